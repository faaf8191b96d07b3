package app

import (
	"quote-drafter/internal/core"
)

// QuoteResult pairs a quote with its totals rounded for display.
type QuoteResult struct {
	Quote  *core.Quote `json:"quote"`
	Totals core.Totals `json:"totals"`
}

func newQuoteResult(q *core.Quote) *QuoteResult {
	return &QuoteResult{Quote: q, Totals: q.Totals().Rounded()}
}

type QuoteListResult struct {
	Quotes []QuoteResult `json:"quotes"`
}

// RevisionResult holds the new Draft revision and the superseded original.
type RevisionResult struct {
	Revision *QuoteResult `json:"revision"`
	Original *QuoteResult `json:"original"`
}

// TotalsResult carries both the rounded figures and the full-precision ones.
type TotalsResult struct {
	Totals  core.Totals `json:"totals"`
	Precise core.Totals `json:"precise"`
}

// DocumentResult is a rendered quote ready to be sent as a file.
type DocumentResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type DraftResult struct {
	Quote    *core.Quote `json:"quote"`
	Totals   core.Totals `json:"totals"`
	Restored bool        `json:"restored"`
}

type SuggestionsResult struct {
	Suggestions []string `json:"suggestions"`
}

// LogoResult is an optimized logo: its public URL when uploaded, and the data URL.
type LogoResult struct {
	URL     string `json:"url,omitempty"`
	DataURL string `json:"dataUrl"`
}

// UserSession is returned after a successful authentication.
type UserSession struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserResult is a user profile without the password hash.
type UserResult struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func newUserResult(u *core.User) *UserResult {
	return &UserResult{ID: u.ID, Username: u.Username, Role: string(u.Role)}
}

type SeedResult struct {
	Profiles  int  `json:"profiles"`
	Customers int  `json:"customers"`
	Quotes    int  `json:"quotes"`
	Skipped   bool `json:"skipped"`
}
