package core_test

import (
	"testing"
	"time"

	"quote-drafter/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedQuote() *core.Quote {
	q := core.NewQuote(fixedNow)
	q.CompanyName = "Acme Ltd"
	q.CustomerName = "Globex"
	q.QuoteNumber = "Q-2026-0007"
	q.Items = []core.LineItem{item("2", "50", "20"), item("1", "10", "0")}
	q.Status = core.StatusApproved
	return q
}

func TestRevise_ApprovedQuote(t *testing.T) {
	original := approvedQuote()
	later := fixedNow.Add(48 * time.Hour)

	rev, old := core.Revise(original, later)

	assert.NotEqual(t, original.ID, rev.ID)
	assert.Equal(t, core.StatusDraft, rev.Status)
	assert.Equal(t, original.ID, rev.RevisionOf)
	assert.Equal(t, "Q-2026-0007-R1", rev.QuoteNumber)
	assert.Equal(t, original.Items, rev.Items)
	assert.Equal(t, original.CustomerName, rev.CustomerName)
	assert.Equal(t, original.CompanyName, rev.CompanyName)
	require.NotNil(t, rev.UpdatedAt)
	assert.True(t, rev.UpdatedAt.Equal(later))

	assert.Equal(t, original.ID, old.ID)
	assert.Equal(t, core.StatusRevised, old.Status)
	assert.Equal(t, core.StatusApproved, original.Status, "input is not mutated")

	rev.Items[0].Description = "changed"
	assert.NotEqual(t, "changed", old.Items[0].Description)
}

func TestRevise_NumbersChain(t *testing.T) {
	q := approvedQuote()
	r1, _ := core.Revise(q, fixedNow)
	r2, _ := core.Revise(r1, fixedNow)
	assert.Equal(t, "Q-2026-0007-R2", r2.QuoteNumber)
	assert.Equal(t, r1.ID, r2.RevisionOf)

	q.QuoteNumber = ""
	r, _ := core.Revise(q, fixedNow)
	assert.Empty(t, r.QuoteNumber)
}

func TestWithStatus_AnyTransition(t *testing.T) {
	for _, from := range core.QuoteStatuses {
		for _, to := range core.QuoteStatuses {
			q := core.NewQuote(fixedNow)
			q.Status = from
			got, err := core.WithStatus(q, to, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, to, got.Status)
		}
	}
	_, err := core.WithStatus(core.NewQuote(fixedNow), "Archived", fixedNow)
	assert.Error(t, err)
}

func TestDuplicate_IsUnrelatedDraft(t *testing.T) {
	q := approvedQuote()
	q.RevisionOf = "older"
	dup := core.Duplicate(q, fixedNow.AddDate(0, 1, 0))

	assert.NotEqual(t, q.ID, dup.ID)
	assert.Empty(t, dup.QuoteNumber)
	assert.Empty(t, dup.RevisionOf)
	assert.Equal(t, core.StatusDraft, dup.Status)
	assert.True(t, dup.QuoteDate.Equal(time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)))
	require.Len(t, dup.Items, 2)
	assert.NotEqual(t, q.Items[0].ID, dup.Items[0].ID)
	assert.Equal(t, q.Items[0].UnitPrice, dup.Items[0].UnitPrice)
}
