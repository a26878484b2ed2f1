package view

import (
	"io"
	"sync"
)

// Buffer is an in-memory Region. It keeps exactly one of a status message or
// a card list, whichever was written last.
type Buffer struct {
	mu   sync.RWMutex
	text string
	list *List
}

var _ Region = (*Buffer)(nil)

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// SetText replaces the region content with msg.
func (b *Buffer) SetText(msg string) {
	b.mu.Lock()
	b.text = msg
	b.list = nil
	b.mu.Unlock()
}

// SetList replaces the region content with l.
func (b *Buffer) SetList(l *List) {
	b.mu.Lock()
	b.text = ""
	b.list = l
	b.mu.Unlock()
}

// Text returns the status message, or "" when a list is showing.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// List returns the card list, or nil when a status message is showing.
func (b *Buffer) List() *List {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.list
}

// WriteHTML writes the current content as an HTML fragment.
func (b *Buffer) WriteHTML(w io.Writer) error {
	text, list := b.snapshot()
	if list != nil {
		return list.WriteHTML(w)
	}
	return WriteStatusHTML(w, text)
}

// WriteText writes the current content as terminal text.
func (b *Buffer) WriteText(w io.Writer) error {
	text, list := b.snapshot()
	if list != nil {
		return list.WriteText(w)
	}
	_, err := io.WriteString(w, SanitizeTerminal(text)+"\n")
	return err
}

func (b *Buffer) snapshot() (string, *List) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text, b.list
}
