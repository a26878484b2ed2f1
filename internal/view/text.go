package view

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// SanitizeTerminal strips ANSI escape sequences and replaces control
// characters with spaces so item text cannot drive the terminal.
func SanitizeTerminal(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// DetailLines returns the labelled detail rows of a card, already sanitised.
func DetailLines(c Card) []string {
	return []string{
		"Brief: " + SanitizeTerminal(c.Brief),
		"Why it matters: " + SanitizeTerminal(c.WhyMatters),
		"Tickers: " + SanitizeTerminal(c.Tickers),
		"Prediction: " + SanitizeTerminal(c.Prediction),
	}
}

// WriteText writes the list as plain terminal text. Collapsed cards show the
// title, link, score and toggle label; expanded cards add the detail rows.
func (l *List) WriteText(w io.Writer) error {
	for i, c := range l.cards {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%d. %s  [%s/10]\n   %s\n",
			i+1, SanitizeTerminal(c.Title), c.Score, SanitizeTerminal(c.Link)); err != nil {
			return err
		}
		if l.Expanded(c.ID) {
			for _, line := range DetailLines(c) {
				if _, err := fmt.Fprintf(w, "   %s\n", line); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintf(w, "   [%s]\n", l.Label(c.ID)); err != nil {
			return err
		}
	}
	return nil
}
