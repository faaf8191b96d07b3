package repl

import (
	"fmt"
	"io"
	"strings"

	"quote-drafter/internal/core"
)

func dateOrDash(q *core.Quote, validUntil bool) string {
	t := q.QuoteDate
	if validUntil {
		t = q.ValidUntilDate
	}
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// PrintQuote writes a quote with its items and rounded totals as a text table.
func PrintQuote(w io.Writer, q *core.Quote) {
	number := q.QuoteNumber
	if number == "" {
		number = "(unsaved)"
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintf(w, "  QUOTE %s  [%s]\n", number, q.Status)
	if q.RevisionOf != "" {
		fmt.Fprintf(w, "  Revision of : %s\n", q.RevisionOf)
	}
	fmt.Fprintf(w, "  From        : %s\n", displayOr(q.CompanyName, "-"))
	fmt.Fprintf(w, "  To          : %s\n", displayOr(q.CustomerName, "-"))
	if q.CustomerContact != "" {
		fmt.Fprintf(w, "  Attn        : %s\n", q.CustomerContact)
	}
	fmt.Fprintf(w, "  Date        : %s   Valid until: %s\n", dateOrDash(q, false), dateOrDash(q, true))
	fmt.Fprintf(w, "  Currency    : %s\n", q.Currency)
	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintf(w, "  %-3s %-30s %9s %-8s %11s %6s %12s\n", "#", "DESCRIPTION", "QTY", "UNIT", "PRICE", "TAX%", "NET")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	if len(q.Items) == 0 {
		fmt.Fprintln(w, "  No items. Use /add-item to add one.")
	}
	for i, item := range q.Items {
		fmt.Fprintf(w, "  %-3d %-30s %9s %-8s %11s %6s %12s\n",
			i+1, clip(item.Description, 30), item.Quantity.String(), clip(item.Unit, 8),
			item.UnitPrice.StringFixed(2), item.TaxRate.String(), core.LineTotal(item).Net.StringFixed(2))
	}
	printTotalsBody(w, q)
	if strings.TrimSpace(q.Notes) != "" {
		fmt.Fprintln(w, "  NOTES:")
		for _, line := range strings.Split(q.Notes, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		fmt.Fprintln(w, strings.Repeat("=", 78))
	}
}

func printTotals(w io.Writer, q *core.Quote) {
	fmt.Fprintln(w)
	printTotalsBody(w, q)
}

func printTotalsBody(w io.Writer, q *core.Quote) {
	t := q.Totals().Rounded()
	fmt.Fprintln(w, strings.Repeat("-", 78))
	fmt.Fprintf(w, "  %-60s %15s\n", "Subtotal", t.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "  %-60s %15s\n", "Tax", t.TaxTotal.StringFixed(2))
	if !t.DiscountAmount.IsZero() {
		label := "Discount"
		if q.DiscountType == core.DiscountPercentage {
			label = fmt.Sprintf("Discount (%s%%)", q.DiscountValue.String())
		}
		fmt.Fprintf(w, "  %-60s %15s\n", label, "-"+t.DiscountAmount.StringFixed(2))
	}
	fmt.Fprintf(w, "  %-60s %15s\n", "TOTAL "+q.Currency, t.GrandTotal.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("=", 78))
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "~"
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `
Commands:
  /set <field> <value>             Set a quote field (e.g. /set currency EUR)
  /add-item                        Append an empty line item
  /rm-item <n>                     Remove line item n
  /item <n> <field> <value>        Edit line item n (description, quantity, unit, unitPrice, tax)
  /discount <percentage|fixed> <v> Set the quote discount
  /customer <name>                 Copy a saved customer into the quote
  /profile <name>                  Copy a saved company profile into the quote
  /totals                          Show subtotal, tax, discount and total
  /show                            Show the whole quote
  /save                            Validate and save the quote
  /new [profile]                   Start a new draft
  /help                            Show this help
  /exit                            Leave (the draft stays saved)

Anything else is sent to the AI drafter; its reply can become the notes.`)
}
