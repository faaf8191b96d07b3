package render

import (
	"bytes"
	"fmt"
	"html/template"

	"quote-drafter/internal/core"
	"quote-drafter/web"
)

// HTMLRenderer produces the printable quote preview.
type HTMLRenderer struct {
	tpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	funcs := template.FuncMap{
		"formatMoney":    formatMoney,
		"formatDate":     formatDate,
		"formatQuantity": formatQuantity,
	}
	tpl, err := template.New("quote.html").Funcs(funcs).ParseFS(web.Templates, "templates/quote.html")
	if err != nil {
		return nil, fmt.Errorf("parse quote template: %w", err)
	}
	return &HTMLRenderer{tpl: tpl}, nil
}

func (r *HTMLRenderer) Render(q *core.Quote) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, NewQuoteView(q)); err != nil {
		return nil, fmt.Errorf("render quote %s: %w", q.ID, err)
	}
	return buf.Bytes(), nil
}
