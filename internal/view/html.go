package view

import (
	"fmt"
	"html/template"
	"io"
)

// listTemplate renders the display region. html/template escapes every text
// field and neutralises unsafe link schemes.
var listTemplate = template.Must(template.New("region").Parse(`
{{- define "status" -}}
<p class="status">{{.}}</p>
{{- end -}}

{{- define "list" -}}
<ol class="cards">
{{- range .}}
<li class="card" data-card="{{.ID}}">
<h3><a href="{{.Link}}" target="_blank" rel="noopener noreferrer">{{.Title}}</a></h3>
<p class="score"><strong>Relevancy Score:</strong> {{.Score}}/10</p>
<button type="button" class="toggle" data-card="{{.ID}}" aria-controls="detail-{{.ID}}" aria-expanded="{{.Expanded}}">{{.Label}}</button>
<div class="detail" id="detail-{{.ID}}"{{if not .Expanded}} hidden{{end}}>
<p><strong>Brief:</strong> {{.Brief}}</p>
<p><strong>Why it matters:</strong> {{.WhyMatters}}</p>
<p><strong>Tickers:</strong> {{.Tickers}}</p>
<p><strong>Prediction:</strong> {{.Prediction}}</p>
</div>
</li>
{{- end}}
</ol>
{{- end -}}
`))

type htmlCard struct {
	Card
	Expanded bool
	Label    string
}

// WriteHTML writes the list as an HTML fragment with one toggle button and
// one detail region per card.
func (l *List) WriteHTML(w io.Writer) error {
	cards := make([]htmlCard, len(l.cards))
	for i, c := range l.cards {
		cards[i] = htmlCard{Card: c, Expanded: l.Expanded(c.ID), Label: l.Label(c.ID)}
	}
	if err := listTemplate.ExecuteTemplate(w, "list", cards); err != nil {
		return fmt.Errorf("rendering card list: %w", err)
	}
	return nil
}

// WriteStatusHTML writes a status message as an escaped HTML fragment.
func WriteStatusHTML(w io.Writer, msg string) error {
	if err := listTemplate.ExecuteTemplate(w, "status", msg); err != nil {
		return fmt.Errorf("rendering status: %w", err)
	}
	return nil
}
