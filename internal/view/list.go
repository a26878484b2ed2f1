// Package view builds the expandable card list for a scan result and writes
// it out as HTML or terminal text. Item text is always treated as data.
package view

import (
	"errors"
	"fmt"

	"newsquant/pkg/newsquant"
)

// Toggle control labels.
const (
	LabelMore = "More"
	LabelLess = "Less"
)

// ErrUnknownCard is returned when a toggle names a card that is not part of
// the current list.
var ErrUnknownCard = errors.New("unknown card")

// CardID identifies a card by its position in the rendered item slice.
type CardID int

// Card is the display form of one item. Fields hold plain text; writers are
// responsible for escaping.
type Card struct {
	ID         CardID
	Title      string
	Link       string
	Score      string
	Brief      string
	WhyMatters string
	Tickers    string
	Prediction string
}

// NewCard formats item as the card at position id.
func NewCard(id CardID, item newsquant.Item) Card {
	return Card{
		ID:         id,
		Title:      item.Title,
		Link:       LinkTarget(item.URL),
		Score:      FormatScore(item.Score),
		Brief:      item.Brief,
		WhyMatters: item.WhyMatters,
		Tickers:    FormatTickers(item.Tickers),
		Prediction: FormatPrediction(item.Prediction),
	}
}

// List is one rendered result set together with its per-card toggle state.
// Every card starts collapsed.
type List struct {
	cards    []Card
	expanded map[CardID]bool
}

// NewList builds a fresh list from items, preserving their order.
func NewList(items []newsquant.Item) *List {
	l := &List{
		cards:    make([]Card, len(items)),
		expanded: make(map[CardID]bool, len(items)),
	}
	for i, item := range items {
		id := CardID(i)
		l.cards[i] = NewCard(id, item)
		l.expanded[id] = false
	}
	return l
}

// Len returns the number of cards.
func (l *List) Len() int { return len(l.cards) }

// Cards returns a copy of the cards in render order.
func (l *List) Cards() []Card {
	out := make([]Card, len(l.cards))
	copy(out, l.cards)
	return out
}

// Card returns the card with the given id.
func (l *List) Card(id CardID) (Card, bool) {
	if !l.has(id) {
		return Card{}, false
	}
	return l.cards[id], true
}

// Expanded reports whether the card's detail region is shown.
func (l *List) Expanded(id CardID) bool { return l.expanded[id] }

// Label returns the current toggle label of the card.
func (l *List) Label(id CardID) string { return ToggleLabel(l.expanded[id]) }

// Toggle flips the detail visibility of a single card and returns the new
// state. No other card is touched.
func (l *List) Toggle(id CardID) (bool, error) {
	if !l.has(id) {
		return false, fmt.Errorf("toggling card %d: %w", id, ErrUnknownCard)
	}
	l.expanded[id] = !l.expanded[id]
	return l.expanded[id], nil
}

// ExpandAll shows every card's detail region.
func (l *List) ExpandAll() { l.setAll(true) }

// CollapseAll hides every card's detail region.
func (l *List) CollapseAll() { l.setAll(false) }

func (l *List) setAll(v bool) {
	for id := range l.expanded {
		l.expanded[id] = v
	}
}

func (l *List) has(id CardID) bool {
	return id >= 0 && int(id) < len(l.cards)
}

// Region is the display area owned by whichever component wrote it last.
// SetText replaces the whole region with a status message; SetList replaces
// it with a card list.
type Region interface {
	SetText(msg string)
	SetList(l *List)
}

// Renderer turns result items into a card list and places it in a Region.
type Renderer struct {
	region Region
}

// NewRenderer creates a Renderer that writes to region.
func NewRenderer(region Region) *Renderer {
	return &Renderer{region: region}
}

// Render discards whatever the region held, builds a new list from items and
// installs it. Callers only pass non-empty slices.
func (r *Renderer) Render(items []newsquant.Item) *List {
	l := NewList(items)
	r.region.SetList(l)
	return l
}
