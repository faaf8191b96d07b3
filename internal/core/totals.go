package core

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals holds the derived figures of a quote at full precision.
// Use Rounded for display.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxTotal       decimal.Decimal `json:"taxTotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

// LineAmounts are the per-row net and tax figures shown in previews.
type LineAmounts struct {
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Gross decimal.Decimal
}

// LineTotal returns quantity × unitPrice and its tax for a single row.
func LineTotal(item LineItem) LineAmounts {
	net := item.Quantity.Mul(item.UnitPrice)
	tax := net.Mul(item.TaxRate).Div(hundred)
	return LineAmounts{Net: net, Tax: tax, Gross: net.Add(tax)}
}

// CalculateTotals derives subtotal, tax, discount and grand total.
//
// A percentage discount applies to subtotal+tax. A fixed discount is taken as
// is and is not clamped, so the grand total may go negative.
func CalculateTotals(items []LineItem, discount Discount) Totals {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, item := range items {
		line := LineTotal(item)
		subtotal = subtotal.Add(line.Net)
		taxTotal = taxTotal.Add(line.Tax)
	}

	gross := subtotal.Add(taxTotal)
	var discountAmount decimal.Decimal
	switch discount.Type {
	case DiscountFixed:
		discountAmount = discount.Value
	default:
		discountAmount = gross.Mul(discount.Value).Div(hundred)
	}

	return Totals{
		Subtotal:       subtotal,
		TaxTotal:       taxTotal,
		DiscountAmount: discountAmount,
		GrandTotal:     gross.Sub(discountAmount),
	}
}

// Rounded returns a copy with every figure rounded to 2 decimal places.
// Rounding happens only here; stored and compared values stay unrounded.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:       t.Subtotal.Round(2),
		TaxTotal:       t.TaxTotal.Round(2),
		DiscountAmount: t.DiscountAmount.Round(2),
		GrandTotal:     t.GrandTotal.Round(2),
	}
}

// ItemsSubtotal is Σ quantity × unitPrice, unrounded. Amount search
// compares against this value.
func ItemsSubtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return sum
}
