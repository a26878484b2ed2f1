package view

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"newsquant/pkg/newsquant"
)

// Placeholders shown in place of absent values.
const (
	PlaceholderLink = "#"
	NoTickers       = "None"
	NoPrediction    = "N/A"
)

// FormatScore formats a relevancy score with exactly one fractional digit.
// The exact binary value is rounded half away from zero, so 0.15 (stored
// just below 0.15) gives "0.1" and 3.25 gives "3.3". Non-finite scores,
// which JSON cannot carry, format as "-".
func FormatScore(score float64) string {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return "-"
	}
	return decimal.NewFromFloatWithExponent(score, exactExponent).StringFixed(1)
}

// exactExponent is small enough for NewFromFloatWithExponent to hold any
// float64 without rounding.
const exactExponent = -1074

// FormatTickers joins tickers with ", ", or returns "None" when empty.
func FormatTickers(tickers []string) string {
	if len(tickers) == 0 {
		return NoTickers
	}
	return strings.Join(tickers, ", ")
}

// FormatPrediction renders prediction entries as "TICKER: VALUE" joined by
// ", " in the order received, or "N/A" when empty.
func FormatPrediction(prediction newsquant.Prediction) string {
	if len(prediction) == 0 {
		return NoPrediction
	}
	var b strings.Builder
	for i, e := range prediction {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Ticker)
		b.WriteString(": ")
		b.WriteString(e.Value)
	}
	return b.String()
}

// LinkTarget returns url, or the non-navigating placeholder when url is empty.
func LinkTarget(url string) string {
	if strings.TrimSpace(url) == "" {
		return PlaceholderLink
	}
	return url
}

// ToggleLabel is the label of a card's toggle control for the given state.
func ToggleLabel(expanded bool) string {
	if expanded {
		return LabelLess
	}
	return LabelMore
}
