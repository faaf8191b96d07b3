package core_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"quote-drafter/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 10, 15, 4, 5, 0, time.UTC)

func TestParseQuote_FillsDefaults(t *testing.T) {
	q, err := core.ParseQuote([]byte(`{"items":[{"description":"Consulting"}]}`), fixedNow)
	require.NoError(t, err)

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, core.DefaultCurrency, q.Currency)
	assert.Equal(t, core.DiscountPercentage, q.DiscountType)
	assert.True(t, q.DiscountValue.IsZero())
	assert.Equal(t, core.StatusDraft, q.Status)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), q.QuoteDate)
	assert.Equal(t, time.Date(2026, 6, 9, 0, 0, 0, 0, time.UTC), q.ValidUntilDate)

	require.Len(t, q.Items, 1)
	it := q.Items[0]
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, "Consulting", it.Description)
	assert.Equal(t, "1", it.Quantity.String())
	assert.Equal(t, core.DefaultUnit, it.Unit)
	assert.True(t, it.UnitPrice.IsZero())
	assert.Equal(t, "20", it.TaxRate.String())
}

func TestParseQuote_ValidUntilFollowsGivenQuoteDate(t *testing.T) {
	q, err := core.ParseQuote([]byte(`{"quoteDate":"2026-01-31"}`), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), q.ValidUntilDate)
	assert.NotNil(t, q.Items)
}

func TestParseQuote_ReportsEveryViolation(t *testing.T) {
	raw := `{
		"customerEmail": "not-an-email",
		"companyEmail": "ok@example.com",
		"discountType": "bogus",
		"discountValue": -1,
		"status": "Pending",
		"quoteDate": "yesterday",
		"items": [
			{"quantity": -2, "unitPrice": "abc", "tax": 150},
			"oops"
		]
	}`
	_, err := core.ParseQuote([]byte(raw), fixedNow)

	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.True(t, verr.Has("customerEmail", core.KindInvalidEmail))
	assert.True(t, verr.Has("discountType", core.KindInvalidEnum))
	assert.True(t, verr.Has("discountValue", core.KindTooSmall))
	assert.True(t, verr.Has("status", core.KindInvalidEnum))
	assert.True(t, verr.Has("quoteDate", core.KindInvalidDate))
	assert.True(t, verr.Has("items[0].quantity", core.KindTooSmall))
	assert.True(t, verr.Has("items[0].unitPrice", core.KindInvalidType))
	assert.True(t, verr.Has("items[0].tax", core.KindTooBig))
	assert.True(t, verr.Has("items[1]", core.KindInvalidType))
	assert.False(t, verr.Has("companyEmail", core.KindInvalidEmail))
	assert.Len(t, verr.Errors, 9)
}

func TestValidateQuote_PresentNullUsesDefault(t *testing.T) {
	q, err := core.ParseQuote([]byte(`{"currency":null,"items":[{"quantity":null}]}`), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, "1", q.Items[0].Quantity.String())
}

func TestValidateQuote_WrongTypes(t *testing.T) {
	_, err := core.ParseQuote([]byte(`{"customerName": 42, "items": {}}`), fixedNow)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("customerName", core.KindInvalidType))
	assert.True(t, verr.Has("items", core.KindInvalidType))
}

func TestValidateQuote_Idempotent(t *testing.T) {
	first, err := core.ParseQuote([]byte(`{"customerName":"Globex","items":[{"quantity":"1.5","unitPrice":"9.99"}]}`), fixedNow)
	require.NoError(t, err)

	data, err := json.Marshal(first)
	require.NoError(t, err)
	second, err := core.ParseQuote(data, fixedNow)
	require.NoError(t, err)

	again, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestValidEmail(t *testing.T) {
	for email, want := range map[string]bool{
		"a@b.co":              true,
		"first.last@corp.com": true,
		"no-at-sign":          false,
		"a@localhost":         false,
		"Name <a@b.co>":       false,
		"a@@b.co":             false,
	} {
		assert.Equal(t, want, core.ValidEmail(email), email)
	}
}

func TestValidateCustomerAndProfile_RequireName(t *testing.T) {
	_, err := core.ValidateCustomer(core.ApplyCustomerDefaults(core.Record{}))
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("customerName", core.KindRequired))

	p, err := core.ValidateCompanyProfile(core.ApplyCompanyProfileDefaults(core.Record{
		"companyName": "Acme",
		"logoUrl":     "https://cdn.example.com/logo.png",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/logo.png", p.CompanyLogo)
}

func TestValidateUser(t *testing.T) {
	u, err := core.ValidateUser(core.ApplyUserDefaults(core.Record{"username": "alice", "password": "secret1"}))
	require.NoError(t, err)
	assert.Equal(t, core.RoleUser, u.Role)

	_, err = core.ValidateUser(core.ApplyUserDefaults(core.Record{"username": "al", "password": "123", "role": "root"}))
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("username", core.KindTooSmall))
	assert.True(t, verr.Has("password", core.KindTooSmall))
	assert.True(t, verr.Has("role", core.KindInvalidEnum))
}

func TestDecodeRecordMalformed(t *testing.T) {
	for _, raw := range []string{`{"customerName":`, `null`, `[1,2]`} {
		_, err := core.DecodeRecord([]byte(raw))
		var ve *core.ValidationError
		require.ErrorAs(t, err, &ve, raw)
		assert.True(t, ve.Has("body", core.KindInvalidType), raw)
	}
}
