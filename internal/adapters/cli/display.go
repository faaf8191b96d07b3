package cli

import (
	"fmt"
	"io"
	"strings"

	"quote-drafter/internal/app"
	"quote-drafter/internal/core"
)

func printQuoteList(w io.Writer, result *app.QuoteListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 96))
	fmt.Fprintf(w, "  %-14s %-10s %-26s %-9s %14s  %s\n", "NUMBER", "DATE", "CUSTOMER", "STATUS", "TOTAL", "ID")
	fmt.Fprintln(w, strings.Repeat("-", 96))
	if len(result.Quotes) == 0 {
		fmt.Fprintln(w, "  No quotes found.")
	}
	for _, r := range result.Quotes {
		q := r.Quote
		fmt.Fprintf(w, "  %-14s %-10s %-26s %-9s %14s  %s\n",
			q.QuoteNumber, q.QuoteDate.Format("2006-01-02"), clip(q.CustomerName, 26), q.Status,
			q.Currency+" "+r.Totals.GrandTotal.StringFixed(2), q.ID)
	}
	fmt.Fprintln(w, strings.Repeat("=", 96))
}

func printTotals(w io.Writer, result *app.TotalsResult) {
	t := result.Totals
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "  %-20s %16s\n", "Subtotal", t.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "  %-20s %16s\n", "Tax", t.TaxTotal.StringFixed(2))
	fmt.Fprintf(w, "  %-20s %16s\n", "Discount", "-"+t.DiscountAmount.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "  %-20s %16s\n", "TOTAL", t.GrandTotal.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("=", 40))
}

func printCustomers(w io.Writer, customers []core.Customer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 88))
	fmt.Fprintln(w, "  CUSTOMERS")
	fmt.Fprintln(w, strings.Repeat("=", 88))
	if len(customers) == 0 {
		fmt.Fprintln(w, "  No customers found.")
		fmt.Fprintln(w, strings.Repeat("=", 88))
		return
	}
	fmt.Fprintf(w, "  %-28s %-20s %-26s %s\n", "NAME", "CONTACT", "EMAIL", "PHONE")
	fmt.Fprintln(w, strings.Repeat("-", 88))
	for _, c := range customers {
		fmt.Fprintf(w, "  %-28s %-20s %-26s %s\n",
			clip(c.CustomerName, 28), clip(c.CustomerContact, 20), clip(c.CustomerEmail, 26), c.CustomerPhone)
	}
	fmt.Fprintln(w, strings.Repeat("=", 88))
}

func printProfiles(w io.Writer, profiles []core.CompanyProfile) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 88))
	fmt.Fprintln(w, "  COMPANY PROFILES")
	fmt.Fprintln(w, strings.Repeat("=", 88))
	if len(profiles) == 0 {
		fmt.Fprintln(w, "  No company profiles found.")
		fmt.Fprintln(w, strings.Repeat("=", 88))
		return
	}
	fmt.Fprintf(w, "  %-28s %-30s %-16s %s\n", "NAME", "EMAIL", "PHONE", "LOGO")
	fmt.Fprintln(w, strings.Repeat("-", 88))
	for _, p := range profiles {
		logo := "no"
		if p.CompanyLogo != "" {
			logo = "yes"
		}
		fmt.Fprintf(w, "  %-28s %-30s %-16s %s\n",
			clip(p.CompanyName, 28), clip(p.CompanyEmail, 30), p.CompanyPhone, logo)
	}
	fmt.Fprintln(w, strings.Repeat("=", 88))
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "~"
}
