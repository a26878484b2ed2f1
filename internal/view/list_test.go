package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsquant/pkg/newsquant"
)

func sampleItems() []newsquant.Item {
	return []newsquant.Item{
		{
			Title:      "Chain remodels 500 stores",
			URL:        "https://news.example/remodel",
			Brief:      "A remodel program.",
			WhyMatters: "Store remodels often drive higher foot traffic.",
			Score:      7.049,
			Tickers:    []string{"MCD"},
			Prediction: newsquant.Prediction{{Ticker: "MCD", Value: "Bullish"}},
		},
		{
			Title:      "Coffee chain launches LTO",
			Brief:      "Seasonal menu.",
			WhyMatters: "Limited-time menu items create urgency.",
			Score:      9.96,
			Tickers:    []string{},
			Prediction: newsquant.Prediction{},
		},
		{
			Title: "Quiet week",
			Score: 1,
		},
	}
}

func TestNewListPreservesOrder(t *testing.T) {
	items := sampleItems()
	l := NewList(items)

	require.Equal(t, len(items), l.Len())
	for i, c := range l.Cards() {
		assert.Equal(t, CardID(i), c.ID)
		assert.Equal(t, items[i].Title, c.Title)
	}
}

func TestNewCardFormatting(t *testing.T) {
	l := NewList(sampleItems())

	c0, ok := l.Card(0)
	require.True(t, ok)
	assert.Equal(t, "https://news.example/remodel", c0.Link)
	assert.Equal(t, "7.0", c0.Score)
	assert.Equal(t, "MCD", c0.Tickers)
	assert.Equal(t, "MCD: Bullish", c0.Prediction)

	c1, ok := l.Card(1)
	require.True(t, ok)
	assert.Equal(t, "#", c1.Link)
	assert.Equal(t, "10.0", c1.Score)
	assert.Equal(t, "None", c1.Tickers)
	assert.Equal(t, "N/A", c1.Prediction)

	_, ok = l.Card(3)
	assert.False(t, ok)
}

func TestListStartsCollapsed(t *testing.T) {
	l := NewList(sampleItems())
	for _, c := range l.Cards() {
		assert.False(t, l.Expanded(c.ID))
		assert.Equal(t, "More", l.Label(c.ID))
	}
}

func TestToggleParity(t *testing.T) {
	for n := 0; n <= 5; n++ {
		l := NewList(sampleItems())
		for i := 0; i < n; i++ {
			_, err := l.Toggle(1)
			require.NoError(t, err)
		}
		odd := n%2 == 1
		assert.Equal(t, odd, l.Expanded(1), "toggles=%d", n)
		if odd {
			assert.Equal(t, "Less", l.Label(1), "toggles=%d", n)
		} else {
			assert.Equal(t, "More", l.Label(1), "toggles=%d", n)
		}
		assert.False(t, l.Expanded(0), "card 0 changed after %d toggles of card 1", n)
		assert.False(t, l.Expanded(2), "card 2 changed after %d toggles of card 1", n)
	}
}

func TestToggleReturnsNewState(t *testing.T) {
	l := NewList(sampleItems())

	got, err := l.Toggle(0)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = l.Toggle(0)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestToggleUnknownCard(t *testing.T) {
	l := NewList(sampleItems())

	_, err := l.Toggle(-1)
	assert.ErrorIs(t, err, ErrUnknownCard)
	_, err = l.Toggle(3)
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestExpandCollapseAll(t *testing.T) {
	l := NewList(sampleItems())
	l.ExpandAll()
	for _, c := range l.Cards() {
		assert.True(t, l.Expanded(c.ID))
	}
	l.CollapseAll()
	for _, c := range l.Cards() {
		assert.False(t, l.Expanded(c.ID))
	}
}

func TestRendererReplacesRegion(t *testing.T) {
	buf := NewBuffer()
	buf.SetText("Scanning...")
	r := NewRenderer(buf)

	first := r.Render(sampleItems())
	_, err := first.Toggle(0)
	require.NoError(t, err)
	assert.Same(t, first, buf.List())
	assert.Empty(t, buf.Text())

	second := r.Render(sampleItems()[:1])
	assert.NotSame(t, first, second)
	assert.Same(t, second, buf.List())
	assert.Equal(t, 1, second.Len())
	assert.False(t, second.Expanded(0), "toggle state must not survive a re-render")
}

func TestBufferLastWriteWins(t *testing.T) {
	buf := NewBuffer()
	buf.SetList(NewList(sampleItems()))
	buf.SetText("HTTP 500")

	assert.Nil(t, buf.List())
	assert.Equal(t, "HTTP 500", buf.Text())
}
