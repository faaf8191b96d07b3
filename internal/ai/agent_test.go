package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"quote-drafter/internal/core"

	"github.com/openai/openai-go/responses"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAgent(reply string, err error) (*Agent, *responses.ResponseNewParams) {
	var captured responses.ResponseNewParams
	a := NewAgent(Config{Model: "test-model", Timeout: time.Second}, zerolog.Nop(), nil)
	a.complete = func(ctx context.Context, p responses.ResponseNewParams) (string, error) {
		captured = p
		return reply, err
	}
	return a, &captured
}

func TestDraftText(t *testing.T) {
	a, params := fakeAgent(`{"text":"  Payment due within 30 days.  "}`, nil)

	got, err := a.DraftText(context.Background(), DraftTextRequest{
		CompanyName:  "Acme",
		CustomerName: "Globex",
		Items:        []core.LineItem{core.NewLineItem()},
	})
	require.NoError(t, err)
	assert.Equal(t, "Payment due within 30 days.", got)

	require.NotNil(t, params.Text.Format.OfJSONSchema)
	assert.Equal(t, "quote_notes", params.Text.Format.OfJSONSchema.Name)
	assert.Contains(t, params.Input.OfString.Value, "Customer: Globex")
	assert.Equal(t, "test-model", string(params.Model))
}

func TestDraftText_EmptyAnswers(t *testing.T) {
	for _, reply := range []string{"", "   ", `{"text":""}`} {
		a, _ := fakeAgent(reply, nil)
		_, err := a.DraftText(context.Background(), DraftTextRequest{Prompt: "hello"})

		var ext *core.ExternalServiceError
		require.ErrorAs(t, err, &ext, "reply %q", reply)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	}
}

func TestAgent_FailuresAreExternal(t *testing.T) {
	a, _ := fakeAgent("", errors.New("connection reset"))
	_, err := a.SuggestImprovements(context.Background(), core.NewQuote(time.Now()))
	var ext *core.ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, "ai", ext.Service)

	a, _ = fakeAgent("not json", nil)
	_, err = a.SuggestImprovements(context.Background(), core.NewQuote(time.Now()))
	assert.ErrorAs(t, err, &ext)
}

func TestAgent_NotConfigured(t *testing.T) {
	a := NewAgent(Config{}, zerolog.Nop(), nil)
	_, err := a.DraftText(context.Background(), DraftTextRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAgent_Timeout(t *testing.T) {
	a := NewAgent(Config{Timeout: 20 * time.Millisecond}, zerolog.Nop(), nil)
	a.complete = func(ctx context.Context, p responses.ResponseNewParams) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	_, err := a.DraftText(context.Background(), DraftTextRequest{Prompt: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSuggestImprovements_DropsBlank(t *testing.T) {
	a, _ := fakeAgent(`{"suggestions":["Add payment terms"," ","Name the contact person"]}`, nil)
	got, err := a.SuggestImprovements(context.Background(), core.NewQuote(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Add payment terms", "Name the contact person"}, got)
}

func TestDraftItems(t *testing.T) {
	a, _ := fakeAgent(`{"items":[
		{"description":"Logo design","quantity":"1","unit":"project","unitPrice":"450.00","tax":"20"},
		{"description":"Revisions","quantity":"3","unit":"","unitPrice":"","tax":""}
	]}`, nil)

	items, err := a.DraftItems(context.Background(), "logo with three revision rounds")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "project", items[0].Unit)
	assert.True(t, decimal.NewFromInt(450).Equal(items[0].UnitPrice))
	assert.Equal(t, core.DefaultUnit, items[1].Unit)
	assert.True(t, items[1].UnitPrice.IsZero())
	assert.True(t, core.DefaultTaxRate.Equal(items[1].TaxRate))
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestDraftItems_InvalidProposal(t *testing.T) {
	a, _ := fakeAgent(`{"items":[{"description":"x","quantity":"1","unit":"h","unitPrice":"10","tax":"150"}]}`, nil)
	_, err := a.DraftItems(context.Background(), "x")
	var ext *core.ExternalServiceError
	require.ErrorAs(t, err, &ext)
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)

	a, _ = fakeAgent(`{"items":[]}`, nil)
	_, err = a.DraftItems(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateSchema_Strict(t *testing.T) {
	schema, err := generateSchema(&itemsOutput{})
	require.NoError(t, err)
	assert.Equal(t, false, schema["additionalProperties"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	items, ok := props["items"].(map[string]any)
	require.True(t, ok)
	inner := items["items"].(map[string]any)
	assert.ElementsMatch(t, []any{"description", "quantity", "unit", "unitPrice", "tax"}, inner["required"])
}
