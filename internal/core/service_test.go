package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quote-drafter/internal/core"
	"quote-drafter/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type services struct {
	quotes    core.QuoteService
	directory core.DirectoryService
	users     core.UserService
	clock     *time.Time
}

func newServices(t *testing.T) *services {
	t.Helper()
	docs := core.NewDocuments(store.NewMemoryStore(), zerolog.Nop())
	clock := fixedNow
	s := &services{clock: &clock}
	now := func() time.Time { return *s.clock }
	s.quotes = core.NewQuoteService(docs, zerolog.Nop(), now)
	s.directory = core.NewDirectoryService(docs, zerolog.Nop())
	s.users = core.NewUserService(docs, zerolog.Nop())
	return s
}

func TestQuoteService_SaveAssignsNumbersAndStamps(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	q1, err := s.quotes.New(ctx, "")
	require.NoError(t, err)
	saved1, err := s.quotes.Save(ctx, q1)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-0001", saved1.QuoteNumber)
	require.NotNil(t, saved1.UpdatedAt)
	assert.True(t, saved1.UpdatedAt.Equal(fixedNow))

	q2, _ := s.quotes.New(ctx, "")
	saved2, err := s.quotes.Save(ctx, q2)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-0002", saved2.QuoteNumber)

	// Re-saving keeps the number and replaces in place.
	saved1.CustomerName = "Globex"
	again, err := s.quotes.Save(ctx, saved1)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-0001", again.QuoteNumber)

	// An update without a number keeps the stored one.
	again.QuoteNumber = ""
	kept, err := s.quotes.Save(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-0001", kept.QuoteNumber)

	all, err := s.quotes.List(ctx, core.QuoteFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestQuoteService_SaveRejectsInvalidQuote(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	q, _ := s.quotes.New(ctx, "")
	q.CustomerEmail = "broken"
	q.Items[0].Quantity = d("-1")
	_, err := s.quotes.Save(ctx, q)

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("customerEmail", core.KindInvalidEmail))
	assert.True(t, verr.Has("items[0].quantity", core.KindTooSmall))

	all, _ := s.quotes.List(ctx, core.QuoteFilter{})
	assert.Empty(t, all)
}

func TestQuoteService_ListFilterAndSort(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	mk := func(customer string, price string, status core.QuoteStatus, day int) {
		q := core.NewQuote(fixedNow.AddDate(0, 0, day))
		q.CustomerName = customer
		q.Items[0].UnitPrice = d(price)
		q.Status = status
		_, err := s.quotes.Save(ctx, q)
		require.NoError(t, err)
	}
	mk("Initech", "300", core.StatusSent, 2)
	mk("globex", "100.5", core.StatusDraft, 0)
	mk("Acme", "200", core.StatusSent, 1)

	byDate, err := s.quotes.List(ctx, core.QuoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"globex", "Acme", "Initech"}, customers(byDate))

	byAmountDesc, _ := s.quotes.List(ctx, core.QuoteFilter{SortBy: "amount", Desc: true})
	assert.Equal(t, []string{"Initech", "Acme", "globex"}, customers(byAmountDesc))

	byCustomer, _ := s.quotes.List(ctx, core.QuoteFilter{SortBy: "customer"})
	assert.Equal(t, []string{"Acme", "globex", "Initech"}, customers(byCustomer))

	sent, _ := s.quotes.List(ctx, core.QuoteFilter{Status: core.StatusSent})
	assert.Len(t, sent, 2)

	byName, _ := s.quotes.List(ctx, core.QuoteFilter{Query: "GLOB"})
	assert.Equal(t, []string{"globex"}, customers(byName))

	byAmount, _ := s.quotes.List(ctx, core.QuoteFilter{Query: "100.5"})
	assert.Equal(t, []string{"globex"}, customers(byAmount))

	byNumber, _ := s.quotes.List(ctx, core.QuoteFilter{Query: "q-2026-0003"})
	assert.Equal(t, []string{"Acme"}, customers(byNumber))
}

func customers(qs []core.Quote) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.CustomerName
	}
	return out
}

func TestQuoteService_ReviseStoresBoth(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	q, _ := s.quotes.New(ctx, "")
	q.CustomerName = "Globex"
	q.Status = core.StatusApproved
	saved, err := s.quotes.Save(ctx, q)
	require.NoError(t, err)

	rev, orig, err := s.quotes.Revise(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusRevised, orig.Status)
	assert.Equal(t, saved.ID, rev.RevisionOf)
	assert.Equal(t, saved.QuoteNumber+"-R1", rev.QuoteNumber)

	again, _, err := s.quotes.Revise(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.QuoteNumber+"-R2", again.QuoteNumber)

	fromRevision, _, err := s.quotes.Revise(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.QuoteNumber+"-R3", fromRevision.QuoteNumber)

	storedOrig, err := s.quotes.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusRevised, storedOrig.Status)
	storedRev, err := s.quotes.Get(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusDraft, storedRev.Status)
	assert.Equal(t, "Globex", storedRev.CustomerName)
}

func TestQuoteService_StatusDeleteDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	q, _ := s.quotes.New(ctx, "")
	saved, err := s.quotes.Save(ctx, q)
	require.NoError(t, err)

	sent, err := s.quotes.SetStatus(ctx, saved.ID, core.StatusSent)
	require.NoError(t, err)
	assert.Equal(t, core.StatusSent, sent.Status)

	_, err = s.quotes.SetStatus(ctx, saved.ID, "Lost")
	assert.Error(t, err)

	dup, err := s.quotes.Duplicate(ctx, saved.ID)
	require.NoError(t, err)
	assert.NotEqual(t, saved.ID, dup.ID)
	assert.Equal(t, "Q-2026-0002", dup.QuoteNumber)
	assert.Equal(t, core.StatusDraft, dup.Status)

	require.NoError(t, s.quotes.Delete(ctx, saved.ID))
	_, err = s.quotes.Get(ctx, saved.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.ErrorIs(t, s.quotes.Delete(ctx, saved.ID), core.ErrNotFound)
	_, _, err = s.quotes.Revise(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestQuoteService_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	var wg sync.WaitGroup
	errCh := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := core.NewQuote(fixedNow)
			if _, err := s.quotes.Save(ctx, q); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent save error: %v", err)
	}

	all, err := s.quotes.List(ctx, core.QuoteFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 20)
	seen := map[string]bool{}
	for _, q := range all {
		assert.False(t, seen[q.QuoteNumber], "duplicate number %s", q.QuoteNumber)
		seen[q.QuoteNumber] = true
	}
}

func TestQuoteService_NewFromProfile(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	p, err := s.directory.SaveProfile(ctx, &core.CompanyProfile{CompanyName: "Acme Ltd", CompanyEmail: "sales@acme.com"})
	require.NoError(t, err)

	q, err := s.quotes.New(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", q.CompanyName)
	assert.Equal(t, "sales@acme.com", q.CompanyEmail)

	_, err = s.quotes.New(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDirectoryService_Customers(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	c, err := s.directory.SaveCustomer(ctx, &core.Customer{CustomerName: "Globex Corp", CustomerEmail: "ap@globex.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	found, err := s.directory.FindCustomer(ctx, "  globex corp ")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)

	_, err = s.directory.SaveCustomer(ctx, &core.Customer{CustomerName: ""})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)

	c.CustomerPhone = "555-0100"
	_, err = s.directory.SaveCustomer(ctx, c)
	require.NoError(t, err)
	list, _ := s.directory.ListCustomers(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "555-0100", list[0].CustomerPhone)

	require.NoError(t, s.directory.DeleteCustomer(ctx, c.ID))
	_, err = s.directory.GetCustomer(ctx, c.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDirectoryService_Profiles(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	p, err := s.directory.SaveProfile(ctx, &core.CompanyProfile{CompanyName: "Zeta"})
	require.NoError(t, err)
	_, err = s.directory.SaveProfile(ctx, &core.CompanyProfile{CompanyName: "alpha"})
	require.NoError(t, err)

	list, _ := s.directory.ListProfiles(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].CompanyName)

	got, err := s.directory.FindProfile(ctx, "ZETA")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	require.NoError(t, s.directory.DeleteProfile(ctx, p.ID))
	assert.ErrorIs(t, s.directory.DeleteProfile(ctx, p.ID), core.ErrNotFound)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	created, err := s.users.EnsureAdmin(ctx, "admin", "changeme")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = s.users.EnsureAdmin(ctx, "admin", "changeme")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := s.users.Authenticate(ctx, "Admin", "changeme")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, u.Role)
	assert.NotEqual(t, "changeme", u.PasswordHash)

	_, err = s.users.Authenticate(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	_, err = s.users.Authenticate(ctx, "ghost", "changeme")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	_, err = s.users.Create(ctx, core.UserInput{Username: "ADMIN", Password: "another1"})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("username", core.KindInvalidEnum))

	bob, err := s.users.Create(ctx, core.UserInput{Username: "bob", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, core.RoleUser, bob.Role)
	byID, err := s.users.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", byID.Username)

	all, _ := s.users.List(ctx)
	assert.Len(t, all, 2)
}
