package render

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"quote-drafter/internal/core"
)

// LineView is one row of the items table.
type LineView struct {
	Index       int
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Net         decimal.Decimal
}

// QuoteView is what both the HTML and PDF outputs are rendered from.
// Totals are already rounded to 2 places.
type QuoteView struct {
	Quote         *core.Quote
	Number        string
	Logo          template.URL
	Watermark     string
	Lines         []LineView
	Totals        core.Totals
	HasDiscount   bool
	DiscountLabel string
}

// NewQuoteView derives the display figures of q.
func NewQuoteView(q *core.Quote) QuoteView {
	v := QuoteView{
		Quote:  q,
		Number: q.QuoteNumber,
		Totals: q.Totals().Rounded(),
	}
	if v.Number == "" {
		v.Number = "-"
	}
	if q.Status != core.StatusDraft {
		v.Watermark = strings.ToUpper(string(q.Status))
	}
	if logoSafe(q.CompanyLogo) {
		v.Logo = template.URL(q.CompanyLogo)
	}
	for i, item := range q.Items {
		v.Lines = append(v.Lines, LineView{
			Index:       i + 1,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			Net:         core.LineTotal(item).Net,
		})
	}
	if !q.DiscountValue.IsZero() {
		v.HasDiscount = true
		if q.DiscountType == core.DiscountPercentage {
			v.DiscountLabel = formatQuantity(q.DiscountValue) + "%"
		}
	}
	return v
}

// logoSafe accepts image data URLs and http(s) links only.
func logoSafe(s string) bool {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "data:image/"):
		return core.IsDataURL(s)
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return true
	}
	return false
}

func formatMoney(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = core.DefaultCurrency
	}
	return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
}

func formatQuantity(d decimal.Decimal) string {
	return d.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}
