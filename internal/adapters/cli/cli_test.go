package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-drafter/internal/ai"
	"quote-drafter/internal/app"
	"quote-drafter/internal/core"
	"quote-drafter/internal/render"
	"quote-drafter/internal/store"
)

type stubAgent struct{}

func (stubAgent) DraftText(ctx context.Context, req ai.DraftTextRequest) (string, error) {
	return "Drafted: " + req.Prompt, nil
}

func (stubAgent) SuggestImprovements(ctx context.Context, q *core.Quote) ([]string, error) {
	return []string{"State the payment terms", "Name a contact"}, nil
}

func (stubAgent) DraftItems(ctx context.Context, description string) ([]core.LineItem, error) {
	item := core.NewLineItem()
	item.ID = "item-1"
	item.Description = description
	return []core.LineItem{item}, nil
}

func newService(t *testing.T) app.ApplicationService {
	t.Helper()
	log := zerolog.Nop()
	now := func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) }
	mem := store.NewMemoryStore()
	docs := core.NewDocuments(mem, log)
	html, err := render.NewHTMLRenderer()
	require.NoError(t, err)
	return app.NewAppService(app.Dependencies{
		Quotes:    core.NewQuoteService(docs, log, now),
		Directory: core.NewDirectoryService(docs, log),
		Users:     core.NewUserService(docs, log),
		Drafts:    mem,
		Agent:     stubAgent{},
		PDF:       render.NewPDFGenerator(log, now),
		HTML:      html,
		Log:       log,
		Now:       now,
	})
}

func execute(t *testing.T, svc app.ApplicationService, stdin string, args ...string) (string, error) {
	t.Helper()
	rt := &runtime{open: func(ctx context.Context, driver string) (app.ApplicationService, func(), error) {
		return svc, func() {}, nil
	}}
	root := newRootCommand(rt)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seeded(t *testing.T) (app.ApplicationService, string) {
	t.Helper()
	svc := newService(t)
	_, err := svc.Seed(context.Background())
	require.NoError(t, err)
	list, err := svc.ListQuotes(context.Background(), app.ListQuotesRequest{})
	require.NoError(t, err)
	require.Len(t, list.Quotes, 1)
	return svc, list.Quotes[0].Quote.ID
}

func TestListAndShow(t *testing.T) {
	svc, id := seeded(t)

	out, err := execute(t, svc, "", "list", "--status", "Draft")
	require.NoError(t, err)
	assert.Contains(t, out, "Q-2026-0001")
	assert.Contains(t, out, "GBP 2074.80")

	out, err = execute(t, svc, "", "list", "-q", "initech")
	require.NoError(t, err)
	assert.Contains(t, out, "No quotes found.")

	_, err = execute(t, svc, "", "list", "--sort", "colour")
	var ve *core.ValidationError
	assert.ErrorAs(t, err, &ve)

	out, err = execute(t, svc, "", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "QUOTE Q-2026-0001  [Draft]")
	assert.Contains(t, out, "Contoso Ltd")
	assert.Contains(t, out, "2074.80")

	out, err = execute(t, svc, "", "show", "--json", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"quoteNumber": "Q-2026-0001"`)

	_, err = execute(t, svc, "", "show", "missing")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestTotalsFromStdin(t *testing.T) {
	svc := newService(t)
	out, err := execute(t, svc, `{"items":[{"description":"Survey","quantity":3,"unitPrice":"10","tax":0}],
		"discountType":"fixed","discountValue":"5"}`, "totals")
	require.NoError(t, err)
	assert.Contains(t, out, "30.00")
	assert.Contains(t, out, "-5.00")
	assert.Contains(t, out, "25.00")

	_, err = execute(t, svc, `{"items": 3}`, "totals")
	var ve *core.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestExport(t *testing.T) {
	svc, id := seeded(t)
	dir := t.TempDir()

	out, err := execute(t, svc, "", "export", id, "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Q-2026-0001.pdf")
	data, err := os.ReadFile(filepath.Join(dir, "Q-2026-0001.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	path := filepath.Join(dir, "preview.html")
	_, err = execute(t, svc, "", "export", id, "--format", "html", "--out", path)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Contoso Ltd")

	_, err = execute(t, svc, "", "export", id, "--format", "docx")
	assert.ErrorContains(t, err, `unknown format "docx"`)
}

func TestStatusReviseDuplicate(t *testing.T) {
	svc, id := seeded(t)

	out, err := execute(t, svc, "", "status", id, "sent")
	require.NoError(t, err)
	assert.Contains(t, out, "Quote Q-2026-0001 is now Sent.")

	_, err = execute(t, svc, "", "status", id, "Lost")
	assert.Error(t, err)

	out, err = execute(t, svc, "", "revise", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Revision Q-2026-0001-R1 created")
	assert.Contains(t, out, "Q-2026-0001 is now Revised.")

	out, err = execute(t, svc, "", "duplicate", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Quote Q-2026-0002 created")
}

func TestDirectoryAndSeed(t *testing.T) {
	svc := newService(t)

	out, err := execute(t, svc, "", "customers")
	require.NoError(t, err)
	assert.Contains(t, out, "No customers found.")

	out, err = execute(t, svc, "", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 1 profiles, 1 customers, 1 quotes.")

	out, err = execute(t, svc, "", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing seeded.")

	out, err = execute(t, svc, "", "customers")
	require.NoError(t, err)
	assert.Contains(t, out, "Contoso Ltd")

	out, err = execute(t, svc, "", "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "Northwind Studio")
}

func TestAICommands(t *testing.T) {
	svc, id := seeded(t)

	out, err := execute(t, svc, "", "ai", "draft", "thank", "them")
	require.NoError(t, err)
	assert.Equal(t, "Drafted: thank them\n", out)

	out, err = execute(t, svc, "", "ai", "suggest", id)
	require.NoError(t, err)
	assert.Contains(t, out, "1. State the payment terms")
	assert.Contains(t, out, "2. Name a contact")

	out, err = execute(t, svc, "", "ai", "items", "paint", "the", "hall")
	require.NoError(t, err)
	assert.Contains(t, out, `"description": "paint the hall"`)
}

func TestReplCommand(t *testing.T) {
	svc := newService(t)
	out, err := execute(t, svc, "/set customerName Umbrella\n/exit\n", "repl", "--owner", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "customerName updated.")

	draft := svc.LoadDraft(context.Background(), "bob")
	assert.Equal(t, "Umbrella", draft.Quote.CustomerName)
}

func TestOpenFailure(t *testing.T) {
	rt := &runtime{open: func(ctx context.Context, driver string) (app.ApplicationService, func(), error) {
		assert.Equal(t, "memory", driver)
		return nil, nil, errors.New("no database")
	}}
	root := newRootCommand(rt)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--store", "memory", "customers"})
	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "open application: no database")
}
