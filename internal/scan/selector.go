package scan

import "sync"

// Fixed is a Selector with a constant value, for callers that already hold
// the selection (query strings, command-line flags).
type Fixed string

// Value returns the fixed selection.
func (f Fixed) Value() string { return string(f) }

// Choice is one selectable value with its display label.
type Choice struct {
	Value string
	Label string
}

// Cycle is a Selector over a fixed list of choices, moved with Next and Prev.
// The terminal UI uses it for the period and industry pickers.
type Cycle struct {
	mu      sync.Mutex
	choices []Choice
	idx     int
}

// NewCycle creates a Cycle positioned on the first choice whose value is
// initial, or on the first choice.
func NewCycle(choices []Choice, initial string) *Cycle {
	c := &Cycle{choices: choices}
	for i, ch := range choices {
		if ch.Value == initial {
			c.idx = i
			break
		}
	}
	return c
}

// Value returns the selected choice's value, or "" when there are no choices.
func (c *Cycle) Value() string { return c.Current().Value }

// Current returns the selected choice.
func (c *Cycle) Current() Choice {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.choices) == 0 {
		return Choice{}
	}
	return c.choices[c.idx]
}

// Next moves to the following choice, wrapping around.
func (c *Cycle) Next() { c.move(1) }

// Prev moves to the preceding choice, wrapping around.
func (c *Cycle) Prev() { c.move(-1) }

func (c *Cycle) move(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.choices)
	if n == 0 {
		return
	}
	c.idx = ((c.idx+delta)%n + n) % n
}
