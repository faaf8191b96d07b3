package app

import (
	"context"

	"github.com/shopspring/decimal"

	"quote-drafter/internal/core"
)

// Seed stores a sample company profile, customer and quote. It does nothing
// when the document already holds any of them.
func (s *appService) Seed(ctx context.Context) (*SeedResult, error) {
	quotes, err := s.quotes.List(ctx, core.QuoteFilter{})
	if err != nil {
		return nil, err
	}
	customers, err := s.directory.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.directory.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(quotes)+len(customers)+len(profiles) > 0 {
		return &SeedResult{Skipped: true}, nil
	}

	profile, err := s.directory.SaveProfile(ctx, &core.CompanyProfile{
		CompanyName:    "Northwind Studio",
		CompanyAddress: "12 Harbour Lane, Bristol",
		CompanyPhone:   "+44 117 496 0000",
		CompanyEmail:   "hello@northwind.example",
	})
	if err != nil {
		return nil, err
	}
	customer, err := s.directory.SaveCustomer(ctx, &core.Customer{
		CustomerName:    "Contoso Ltd",
		CustomerContact: "Dana Reyes",
		CustomerAddress: "4 Market Street, Leeds",
		CustomerEmail:   "dana@contoso.example",
		CustomerPhone:   "+44 113 496 0123",
	})
	if err != nil {
		return nil, err
	}

	q, err := s.quotes.New(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	customer.ApplyToQuote(q)
	q.Currency = "GBP"
	q.Items = []core.LineItem{
		{
			ID: core.NewID(), Description: "Brand workshop", Quantity: decimal.NewFromInt(1),
			Unit: "day", UnitPrice: decimal.NewFromInt(950), TaxRate: core.DefaultTaxRate,
		},
		{
			ID: core.NewID(), Description: "Logo design", Quantity: decimal.NewFromInt(12),
			Unit: "hour", UnitPrice: decimal.RequireFromString("72.50"), TaxRate: core.DefaultTaxRate,
		},
	}
	q.DiscountValue = decimal.NewFromInt(5)
	q.Notes = "Payment due within 30 days of acceptance."
	if _, err := s.quotes.Save(ctx, q); err != nil {
		return nil, err
	}

	s.log.Info().Msg("sample data seeded")
	return &SeedResult{Profiles: 1, Customers: 1, Quotes: 1}, nil
}
