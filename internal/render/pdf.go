package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"quote-drafter/internal/core"
)

// PDFGenerator lays a quote out on A4 pages.
type PDFGenerator struct {
	log zerolog.Logger
	now func() time.Time
}

func NewPDFGenerator(log zerolog.Logger, now func() time.Time) *PDFGenerator {
	if now == nil {
		now = time.Now
	}
	return &PDFGenerator{log: log, now: now}
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"#", 8, "L"},
	{"Description", 72, "L"},
	{"Qty", 18, "R"},
	{"Unit", 18, "L"},
	{"Unit price", 28, "R"},
	{"Tax", 16, "R"},
	{"Amount", 30, "R"},
}

func (g *PDFGenerator) Generate(q *core.Quote) ([]byte, error) {
	v := NewQuoteView(q)
	cur := q.Currency

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quote "+v.Number, true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if v.Watermark != "" {
		watermark(pdf, v.Watermark)
	}

	top := pdf.GetY()
	if g.placeLogo(pdf, q.CompanyLogo) {
		pdf.SetY(top + 26)
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(110, 7, tr(q.CompanyName))
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 7, "QUOTE", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	left := []string{q.CompanyAddress, q.CompanyPhone, q.CompanyEmail}
	right := []string{
		"No. " + v.Number,
		"Date: " + formatDate(q.QuoteDate),
		"Valid until: " + formatDate(q.ValidUntilDate),
		"Status: " + string(q.Status),
	}
	if q.RevisionOf != "" {
		right = append(right, "Revision of: "+q.RevisionOf)
	}
	for i := 0; i < len(left) || i < len(right); i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		pdf.Cell(110, 5, tr(l))
		pdf.CellFormat(0, 5, tr(r), "", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 6, "Prepared for")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	customer := []string{q.CustomerName}
	if q.CustomerContact != "" {
		customer = append(customer, "Attn: "+q.CustomerContact)
	}
	customer = append(customer, q.CustomerAddress, q.CustomerEmail, q.CustomerPhone)
	for _, line := range customer {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.Cell(0, 5, tr(line))
		pdf.Ln(5)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(243, 244, 246)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "B", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range v.Lines {
		cells := []string{
			fmt.Sprintf("%d", line.Index),
			trim(line.Description, 44),
			formatQuantity(line.Quantity),
			trim(line.Unit, 10),
			line.UnitPrice.StringFixed(2),
			formatQuantity(line.TaxRate) + "%",
			line.Net.StringFixed(2),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 6, tr(cells[i]), "B", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	total := func(label string, amount string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.Cell(120, 6, "")
		pdf.Cell(35, 6, tr(label))
		pdf.CellFormat(35, 6, amount, "", 1, "R", false, 0, "")
	}
	total("Subtotal", formatMoney(v.Totals.Subtotal, cur), false)
	total("Tax", formatMoney(v.Totals.TaxTotal, cur), false)
	if v.HasDiscount {
		label := "Discount"
		if v.DiscountLabel != "" {
			label += " (" + v.DiscountLabel + ")"
		}
		total(label, "-"+formatMoney(v.Totals.DiscountAmount, cur), false)
	}
	total("Total", formatMoney(v.Totals.GrandTotal, cur), true)

	if strings.TrimSpace(q.Notes) != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, "Notes")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(q.Notes), "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(107, 114, 128)
	pdf.Cell(0, 5, "Generated "+g.now().UTC().Format(time.RFC3339))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.log.Error().Err(err).Str("quote_id", q.ID).Msg("quote pdf output failed")
		return nil, fmt.Errorf("render pdf %s: %w", q.ID, err)
	}
	return buf.Bytes(), nil
}

// placeLogo draws an embedded PNG or JPEG logo at the top left. Linked
// logos and unreadable images are skipped.
func (g *PDFGenerator) placeLogo(pdf *gofpdf.Fpdf, logo string) bool {
	if !core.IsDataURL(logo) {
		return false
	}
	u, err := core.ParseDataURL(logo)
	if err != nil {
		return false
	}
	var kind string
	switch u.MIME {
	case "image/png":
		kind = "PNG"
	case "image/jpeg":
		kind = "JPG"
	default:
		return false
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(u.Data)); err != nil {
		g.log.Debug().Err(err).Msg("skipping unreadable logo")
		return false
	}
	opts := gofpdf.ImageOptions{ImageType: kind}
	pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(u.Data))
	if !pdf.Ok() {
		g.log.Debug().Err(pdf.Error()).Msg("skipping logo gofpdf rejected")
		pdf.ClearError()
		return false
	}
	// 240x90 canvas at 4px per mm
	pdf.ImageOptions("logo", 10, 10, 60, 22.5, false, opts, 0, "")
	return true
}

func watermark(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 72)
	pdf.SetTextColor(225, 225, 225)
	pdf.TransformBegin()
	pdf.TransformRotate(35, 105, 160)
	w := pdf.GetStringWidth(text)
	pdf.Text(105-w/2, 170, text)
	pdf.TransformEnd()
	pdf.SetTextColor(0, 0, 0)
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
