package newsquant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
)

// Query is the filter selection for one scan.
type Query struct {
	Period   string
	Industry string // empty means all industries
}

// Values encodes q as /scan query string fields. An empty industry is left
// out entirely rather than sent as an empty value.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("period", q.Period)
	if q.Industry != "" {
		v.Set("industry", q.Industry)
	}
	return v
}

// Item is a single scored news article as returned by GET /scan.
type Item struct {
	Title      string     `json:"title"`
	URL        string     `json:"url,omitempty"`
	Brief      string     `json:"brief"`
	WhyMatters string     `json:"why_matters"`
	Score      float64    `json:"score"`
	Tickers    []string   `json:"tickers"`
	Prediction Prediction `json:"prediction"`
}

// PredictionEntry is the predicted move for one ticker.
type PredictionEntry struct {
	Ticker string
	Value  string
}

// Prediction is the ticker to prediction object of an item, kept in the
// order the entries appear in the response.
type Prediction []PredictionEntry

// UnmarshalJSON decodes a JSON object in document order. Non-string values
// are kept as their raw JSON text.
func (p *Prediction) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*p = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("prediction: want object, got %s", res.Type)
	}

	out := Prediction{}
	res.ForEach(func(key, value gjson.Result) bool {
		out = append(out, PredictionEntry{Ticker: key.String(), Value: value.String()})
		return true
	})
	*p = out
	return nil
}

// MarshalJSON encodes p as a JSON object with its entries in order.
func (p Prediction) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(e.Ticker)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Get returns the prediction for ticker.
func (p Prediction) Get(ticker string) (string, bool) {
	for _, e := range p {
		if e.Ticker == ticker {
			return e.Value, true
		}
	}
	return "", false
}
