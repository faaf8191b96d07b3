package app

import (
	"context"

	"quote-drafter/internal/ai"
	"quote-drafter/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// NewQuote returns an unsaved draft, pre-filled from a company profile when profileID is set.
	NewQuote(ctx context.Context, profileID string) (*QuoteResult, error)

	GetQuote(ctx context.Context, id string) (*QuoteResult, error)

	// ListQuotes returns quotes matching the search text and status, in the requested order.
	ListQuotes(ctx context.Context, req ListQuotesRequest) (*QuoteListResult, error)

	// SaveQuote validates and stores a typed quote, assigning a number on first save.
	SaveQuote(ctx context.Context, q *core.Quote) (*QuoteResult, error)

	// SaveQuoteJSON runs raw JSON through defaults and validation before saving.
	// A non-empty id overrides any id in the body.
	SaveQuoteJSON(ctx context.Context, id string, body []byte) (*QuoteResult, error)

	// UpdateQuoteFields applies named field edits to a stored quote and saves it.
	UpdateQuoteFields(ctx context.Context, req UpdateFieldsRequest) (*QuoteResult, error)

	DeleteQuote(ctx context.Context, id string) error

	// SetQuoteStatus moves a quote to any of the five statuses.
	SetQuoteStatus(ctx context.Context, id, status string) (*QuoteResult, error)

	// ReviseQuote stores a Draft copy of the quote and marks the original Revised.
	ReviseQuote(ctx context.Context, id string) (*RevisionResult, error)

	// DuplicateQuote stores an unrelated Draft copy of the quote.
	DuplicateQuote(ctx context.Context, id string) (*QuoteResult, error)

	// CalculateTotals prices an unsaved quote given as raw JSON. Nothing is stored.
	CalculateTotals(ctx context.Context, body []byte) (*TotalsResult, error)

	// RenderQuotePDF returns the PDF document of a stored quote.
	RenderQuotePDF(ctx context.Context, id string) (*DocumentResult, error)

	// RenderQuoteHTML returns the printable HTML preview of a stored quote.
	RenderQuoteHTML(ctx context.Context, id string) (*DocumentResult, error)

	ListCustomers(ctx context.Context) ([]core.Customer, error)
	GetCustomer(ctx context.Context, id string) (*core.Customer, error)
	FindCustomer(ctx context.Context, name string) (*core.Customer, error)
	SaveCustomer(ctx context.Context, c *core.Customer) (*core.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	ListProfiles(ctx context.Context) ([]core.CompanyProfile, error)
	GetProfile(ctx context.Context, id string) (*core.CompanyProfile, error)
	FindProfile(ctx context.Context, name string) (*core.CompanyProfile, error)
	SaveProfile(ctx context.Context, p *core.CompanyProfile) (*core.CompanyProfile, error)
	DeleteProfile(ctx context.Context, id string) error

	// LoadDraft returns the autosaved draft of owner. It never fails: a missing
	// or unreadable draft yields a fresh quote with Restored=false.
	LoadDraft(ctx context.Context, owner string) *DraftResult

	// SaveDraft stores q as owner's draft without validating it.
	SaveDraft(ctx context.Context, owner string, q *core.Quote) error

	// SaveDraftJSON stores raw form state as owner's draft. The body only has
	// to be a JSON object; it is validated when the draft is loaded.
	SaveDraftJSON(ctx context.Context, owner string, body []byte) error

	DiscardDraft(ctx context.Context, owner string) error

	// DraftText asks the language model for quote text, typically the notes.
	DraftText(ctx context.Context, req ai.DraftTextRequest) (string, error)

	// SuggestImprovements asks the language model for short suggestions on a quote.
	SuggestImprovements(ctx context.Context, q *core.Quote) (*SuggestionsResult, error)

	// SuggestImprovementsJSON runs a raw quote, saved or not, through defaults
	// and validation before asking for suggestions.
	SuggestImprovementsJSON(ctx context.Context, body []byte) (*SuggestionsResult, error)

	// DraftItems turns a free-text job description into validated line items.
	DraftItems(ctx context.Context, description string) ([]core.LineItem, error)

	// OptimizeLogo fits a data URL image into the 240×90 logo box.
	OptimizeLogo(ctx context.Context, dataURL string) (string, error)

	// UploadLogo optimizes an uploaded image and stores it in blob storage.
	UploadLogo(ctx context.Context, req LogoUploadRequest) (*LogoResult, error)

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, id string) (*UserResult, error)

	ListUsers(ctx context.Context) ([]UserResult, error)
	CreateUser(ctx context.Context, in core.UserInput) (*UserResult, error)

	// EnsureAdmin creates the configured bootstrap admin when it does not exist yet.
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)

	// Seed stores a sample company profile, customer and quote into an empty document.
	Seed(ctx context.Context) (*SeedResult, error)
}
