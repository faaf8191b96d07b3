package core

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// QuoteFilter narrows and orders List results.
type QuoteFilter struct {
	// Query matches customer, company, quote number or email case-insensitively,
	// or a substring of the unrounded items subtotal.
	Query  string
	Status QuoteStatus
	// SortBy is one of "date" (default), "amount", "customer", "updated".
	SortBy string
	Desc   bool
}

// QuoteService manages quote records inside the shared document.
type QuoteService interface {
	// New returns an unsaved draft, optionally pre-filled from a company profile.
	New(ctx context.Context, profileID string) (*Quote, error)
	Get(ctx context.Context, id string) (*Quote, error)
	List(ctx context.Context, filter QuoteFilter) ([]Quote, error)
	// Save inserts or replaces a quote, assigning a quote number on first save.
	Save(ctx context.Context, q *Quote) (*Quote, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status QuoteStatus) (*Quote, error)
	// Revise stores a Draft copy under a new id and marks the original Revised.
	Revise(ctx context.Context, id string) (revision *Quote, original *Quote, err error)
	Duplicate(ctx context.Context, id string) (*Quote, error)
}

type quoteService struct {
	docs *Documents
	log  zerolog.Logger
	now  func() time.Time
}

func NewQuoteService(docs *Documents, log zerolog.Logger, now func() time.Time) QuoteService {
	if now == nil {
		now = time.Now
	}
	return &quoteService{docs: docs, log: log.With().Str("service", "quotes").Logger(), now: now}
}

func findQuote(db *Database, id string) int {
	for i := range db.Quotes {
		if db.Quotes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *quoteService) New(ctx context.Context, profileID string) (*Quote, error) {
	q := NewQuote(s.now())
	if profileID == "" {
		return q, nil
	}
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range db.CompanyProfiles {
		if db.CompanyProfiles[i].ID == profileID {
			db.CompanyProfiles[i].ApplyToQuote(q)
			return q, nil
		}
	}
	return nil, fmt.Errorf("company profile %s: %w", profileID, ErrNotFound)
}

func (s *quoteService) Get(ctx context.Context, id string) (*Quote, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	i := findQuote(db, id)
	if i < 0 {
		return nil, fmt.Errorf("quote %s: %w", id, ErrNotFound)
	}
	return db.Quotes[i].Clone(), nil
}

func (s *quoteService) List(ctx context.Context, filter QuoteFilter) ([]Quote, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Quote, 0, len(db.Quotes))
	for _, q := range db.Quotes {
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		if !matchesQuery(&q, filter.Query) {
			continue
		}
		out = append(out, q)
	}
	sortQuotes(out, filter.SortBy, filter.Desc)
	return out, nil
}

func matchesQuery(q *Quote, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range []string{q.CustomerName, q.CompanyName, q.QuoteNumber, q.CustomerEmail} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return strings.Contains(ItemsSubtotal(q.Items).String(), query)
}

func sortQuotes(qs []Quote, by string, desc bool) {
	less := func(a, b *Quote) bool { return a.QuoteDate.Before(b.QuoteDate) }
	switch by {
	case "amount":
		less = func(a, b *Quote) bool { return a.Totals().GrandTotal.LessThan(b.Totals().GrandTotal) }
	case "customer":
		less = func(a, b *Quote) bool { return strings.ToLower(a.CustomerName) < strings.ToLower(b.CustomerName) }
	case "updated":
		less = func(a, b *Quote) bool { return updatedAt(a).Before(updatedAt(b)) }
	}
	sort.SliceStable(qs, func(i, j int) bool {
		if desc {
			return less(&qs[j], &qs[i])
		}
		return less(&qs[i], &qs[j])
	})
}

func updatedAt(q *Quote) time.Time {
	if q.UpdatedAt != nil {
		return *q.UpdatedAt
	}
	return q.QuoteDate
}

var quoteNumberPattern = regexp.MustCompile(`^Q-(\d{4})-(\d+)`)

// nextQuoteNumber returns Q-<year>-<seq> one past the highest sequence used in year.
func nextQuoteNumber(db *Database, year int) string {
	highest := 0
	for _, q := range db.Quotes {
		m := quoteNumberPattern.FindStringSubmatch(q.QuoteNumber)
		if m == nil || m[1] != strconv.Itoa(year) {
			continue
		}
		if n, _ := strconv.Atoi(m[2]); n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("Q-%d-%04d", year, highest+1)
}

// revalidate sends a typed quote back through the validator so that values
// built in code obey the same constraints as decoded input.
func revalidate(q *Quote) (*Quote, error) {
	in := q.Clone()
	if in.ID == "" {
		in.ID = NewID()
	}
	for i := range in.Items {
		if in.Items[i].ID == "" {
			in.Items[i].ID = NewID()
		}
	}
	rec, err := RecordFrom(in)
	if err != nil {
		return nil, err
	}
	return ValidateQuote(rec)
}

func (s *quoteService) Save(ctx context.Context, q *Quote) (*Quote, error) {
	valid, err := revalidate(q)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	valid.UpdatedAt = &now

	err = s.docs.Update(ctx, func(db *Database) error {
		i := findQuote(db, valid.ID)
		if valid.QuoteNumber == "" && i >= 0 {
			valid.QuoteNumber = db.Quotes[i].QuoteNumber
		}
		if valid.QuoteNumber == "" {
			valid.QuoteNumber = nextQuoteNumber(db, valid.QuoteDate.Year())
		}
		if i >= 0 {
			db.Quotes[i] = *valid
		} else {
			db.Quotes = append(db.Quotes, *valid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("quote_id", valid.ID).Str("number", valid.QuoteNumber).Msg("quote saved")
	return valid, nil
}

func (s *quoteService) Delete(ctx context.Context, id string) error {
	err := s.docs.Update(ctx, func(db *Database) error {
		i := findQuote(db, id)
		if i < 0 {
			return fmt.Errorf("quote %s: %w", id, ErrNotFound)
		}
		db.Quotes = append(db.Quotes[:i], db.Quotes[i+1:]...)
		return nil
	})
	if err == nil {
		s.log.Info().Str("quote_id", id).Msg("quote deleted")
	}
	return err
}

func (s *quoteService) SetStatus(ctx context.Context, id string, status QuoteStatus) (*Quote, error) {
	var updated *Quote
	err := s.docs.Update(ctx, func(db *Database) error {
		i := findQuote(db, id)
		if i < 0 {
			return fmt.Errorf("quote %s: %w", id, ErrNotFound)
		}
		q, err := WithStatus(&db.Quotes[i], status, s.now())
		if err != nil {
			return err
		}
		db.Quotes[i] = *q
		updated = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("quote_id", id).Str("status", string(status)).Msg("quote status changed")
	return updated, nil
}

func (s *quoteService) Revise(ctx context.Context, id string) (*Quote, *Quote, error) {
	var revision, original *Quote
	err := s.docs.Update(ctx, func(db *Database) error {
		i := findQuote(db, id)
		if i < 0 {
			return fmt.Errorf("quote %s: %w", id, ErrNotFound)
		}
		revision, original = Revise(&db.Quotes[i], s.now())
		revision.QuoteNumber = nextRevisionIn(db, db.Quotes[i].QuoteNumber)
		db.Quotes[i] = *original
		db.Quotes = append(db.Quotes, *revision)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.log.Info().Str("quote_id", id).Str("revision_id", revision.ID).Msg("quote revised")
	return revision, original, nil
}

func (s *quoteService) Duplicate(ctx context.Context, id string) (*Quote, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Save(ctx, Duplicate(src, s.now()))
}
