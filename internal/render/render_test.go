package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-drafter/internal/core"
)

var fixedNow = time.Date(2026, 5, 10, 15, 4, 5, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleQuote() *core.Quote {
	q := core.NewQuote(fixedNow)
	q.QuoteNumber = "Q-2026-0003"
	q.CompanyName = "Acme Fabrication"
	q.CompanyEmail = "sales@acme.test"
	q.CustomerName = "Beta <Holdings>"
	q.CustomerEmail = "ops@beta.test"
	q.Items = []core.LineItem{
		{ID: "a", Description: "Steel bracket", Quantity: d("4"), Unit: "piece", UnitPrice: d("12.5"), TaxRate: d("20")},
		{ID: "b", Description: "Installation", Quantity: d("2.5"), Unit: "hour", UnitPrice: d("40"), TaxRate: d("0")},
	}
	q.DiscountValue = d("10")
	q.Notes = "Delivery within 5 working days."
	return q
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 24, 9))
	for x := 0; x < 24; x++ {
		img.Set(x, 4, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestNewQuoteView(t *testing.T) {
	q := sampleQuote()
	v := NewQuoteView(q)

	assert.Equal(t, "Q-2026-0003", v.Number)
	assert.Empty(t, v.Watermark)
	require.Len(t, v.Lines, 2)
	assert.Equal(t, 1, v.Lines[0].Index)
	assert.True(t, v.Lines[0].Net.Equal(d("50")))
	assert.True(t, v.Lines[1].Net.Equal(d("100")))
	assert.True(t, v.Totals.Subtotal.Equal(d("150")))
	assert.True(t, v.Totals.TaxTotal.Equal(d("10")))
	assert.True(t, v.Totals.DiscountAmount.Equal(d("16")))
	assert.True(t, v.Totals.GrandTotal.Equal(d("144")))
	assert.True(t, v.HasDiscount)
	assert.Equal(t, "10%", v.DiscountLabel)

	q.Status = core.StatusApproved
	q.QuoteNumber = ""
	q.DiscountType = core.DiscountFixed
	v = NewQuoteView(q)
	assert.Equal(t, "APPROVED", v.Watermark)
	assert.Equal(t, "-", v.Number)
	assert.Empty(t, v.DiscountLabel)
}

func TestLogoSafe(t *testing.T) {
	assert.True(t, logoSafe("https://cdn.test/logo.png"))
	assert.True(t, logoSafe(pngDataURL(t)))
	assert.False(t, logoSafe("javascript:alert(1)"))
	assert.False(t, logoSafe("data:text/html;base64,PGI+"))
	assert.False(t, logoSafe(""))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "EUR 10.50", formatMoney(d("10.499"), "eur"))
	assert.Equal(t, "USD 0.00", formatMoney(decimal.Zero, ""))
	assert.Equal(t, "-", formatDate(time.Time{}))
	assert.Equal(t, "2026-05-10", formatDate(fixedNow))
}

func TestHTMLRenderer(t *testing.T) {
	r, err := NewHTMLRenderer()
	require.NoError(t, err)

	q := sampleQuote()
	q.CompanyLogo = pngDataURL(t)
	q.Status = core.StatusSent
	out, err := r.Render(q)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Q-2026-0003")
	assert.Contains(t, html, "Beta &lt;Holdings&gt;")
	assert.NotContains(t, html, "Beta <Holdings>")
	assert.Contains(t, html, "USD 144.00")
	assert.Contains(t, html, "-USD 16.00")
	assert.Contains(t, html, `src="data:image/png;base64,`)
	assert.Contains(t, html, `class="watermark">SENT<`)
	assert.Contains(t, html, "2026-06-09")
}

func TestPDFGenerator(t *testing.T) {
	g := NewPDFGenerator(zerolog.Nop(), func() time.Time { return fixedNow })

	t.Run("draft", func(t *testing.T) {
		out, err := g.Generate(sampleQuote())
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	})

	t.Run("approved with logo", func(t *testing.T) {
		q := sampleQuote()
		q.Status = core.StatusApproved
		q.CompanyLogo = pngDataURL(t)
		q.Items = append(q.Items, core.LineItem{
			ID: "c", Description: strings.Repeat("long description ", 10),
			Quantity: d("1"), Unit: "piece", UnitPrice: d("1"), TaxRate: d("20"),
		})
		out, err := g.Generate(q)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	})

	t.Run("broken logo is skipped", func(t *testing.T) {
		q := sampleQuote()
		q.CompanyLogo = "data:image/png;base64,AAAA"
		out, err := g.Generate(q)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	})
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "short", trim("short", 10))
	assert.Equal(t, "abcdefg...", trim("abcdefghijklmnop", 10))
}
