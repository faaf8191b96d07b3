package ai

import (
	"fmt"
	"strings"

	"quote-drafter/internal/core"
)

func writeItems(b *strings.Builder, items []core.LineItem, currency string) {
	if len(items) == 0 {
		b.WriteString("Items: none yet\n")
		return
	}
	b.WriteString("Items:\n")
	for _, it := range items {
		fmt.Fprintf(b, "- %s: %s %s x %s %s (tax %s%%)\n",
			orDash(it.Description), it.Quantity.String(), it.Unit, it.UnitPrice.StringFixed(2), currency, it.TaxRate.String())
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func draftTextPrompt(req DraftTextRequest) string {
	var b strings.Builder
	b.WriteString(`You write the notes section of a business sales quote.
Rules:
1. Be concise and professional. At most 120 words.
2. Cover scope, payment terms and validity only if the context supports them.
3. Do not invent prices or quantities.
4. Plain text only. No markdown.

`)
	if p := strings.TrimSpace(req.Prompt); p != "" {
		fmt.Fprintf(&b, "Request: %s\n", p)
	}
	fmt.Fprintf(&b, "Company: %s\n", orDash(req.CompanyName))
	fmt.Fprintf(&b, "Customer: %s\n", orDash(req.CustomerName))
	currency := req.Currency
	if currency == "" {
		currency = core.DefaultCurrency
	}
	writeItems(&b, req.Items, currency)
	if n := strings.TrimSpace(req.Notes); n != "" {
		fmt.Fprintf(&b, "Current notes: %s\n", n)
	}
	return b.String()
}

func suggestPrompt(q *core.Quote) string {
	var b strings.Builder
	b.WriteString(`You review business sales quotes before they are sent.
Return between one and five short suggestions that would make this quote clearer or more likely to be accepted.
Point out missing customer details, vague item descriptions, unusual tax rates or discounts, and missing terms.

`)
	fmt.Fprintf(&b, "Company: %s\n", orDash(q.CompanyName))
	fmt.Fprintf(&b, "Customer: %s (contact %s, email %s)\n", orDash(q.CustomerName), orDash(q.CustomerContact), orDash(q.CustomerEmail))
	fmt.Fprintf(&b, "Quote date: %s, valid until: %s\n", q.QuoteDate.Format("2006-01-02"), q.ValidUntilDate.Format("2006-01-02"))
	writeItems(&b, q.Items, q.Currency)
	t := q.Totals().Rounded()
	fmt.Fprintf(&b, "Discount: %s %s\n", q.DiscountValue.String(), q.DiscountType)
	fmt.Fprintf(&b, "Totals: subtotal %s, tax %s, discount %s, grand total %s %s\n",
		t.Subtotal.StringFixed(2), t.TaxTotal.StringFixed(2), t.DiscountAmount.StringFixed(2), t.GrandTotal.StringFixed(2), q.Currency)
	fmt.Fprintf(&b, "Notes: %s\n", orDash(q.Notes))
	return b.String()
}

func itemsPrompt(description string) string {
	return fmt.Sprintf(`You turn a description of work into line items for a sales quote.
Rules:
1. One item per distinct deliverable.
2. Quantities and prices are plain decimal strings such as "2" or "150.00".
3. Leave unitPrice as "0" when the description gives no price.
4. Use tax "20" unless the description states another rate.

Description: %s`, strings.TrimSpace(description))
}
