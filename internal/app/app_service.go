package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"quote-drafter/internal/ai"
	"quote-drafter/internal/blob"
	"quote-drafter/internal/core"
	"quote-drafter/internal/render"
)

// Dependencies are the collaborators of the application service. Storage may
// be nil, in which case UploadLogo fails with blob.ErrMissingCredential.
type Dependencies struct {
	Quotes    core.QuoteService
	Directory core.DirectoryService
	Users     core.UserService
	Drafts    core.DraftStore
	Agent     ai.DraftService
	Logos     *ai.LogoOptimizer
	Storage   blob.Storage
	PDF       *render.PDFGenerator
	HTML      *render.HTMLRenderer
	Log       zerolog.Logger
	Now       func() time.Time
}

type appService struct {
	quotes    core.QuoteService
	directory core.DirectoryService
	users     core.UserService
	drafts    core.DraftStore
	agent     ai.DraftService
	logos     *ai.LogoOptimizer
	storage   blob.Storage
	pdf       *render.PDFGenerator
	html      *render.HTMLRenderer
	log       zerolog.Logger
	now       func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(deps Dependencies) ApplicationService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logos := deps.Logos
	if logos == nil {
		logos = ai.NewLogoOptimizer()
	}
	return &appService{
		quotes:    deps.Quotes,
		directory: deps.Directory,
		users:     deps.Users,
		drafts:    deps.Drafts,
		agent:     deps.Agent,
		logos:     logos,
		storage:   deps.Storage,
		pdf:       deps.PDF,
		html:      deps.HTML,
		log:       deps.Log,
		now:       now,
	}
}

func (s *appService) NewQuote(ctx context.Context, profileID string) (*QuoteResult, error) {
	q, err := s.quotes.New(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return newQuoteResult(q), nil
}

func (s *appService) GetQuote(ctx context.Context, id string) (*QuoteResult, error) {
	q, err := s.quotes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return newQuoteResult(q), nil
}

var sortKeys = []string{"date", "amount", "customer", "updated"}

func (s *appService) ListQuotes(ctx context.Context, req ListQuotesRequest) (*QuoteListResult, error) {
	filter := core.QuoteFilter{Query: req.Query, Desc: req.Desc}
	if strings.TrimSpace(req.Status) != "" {
		st, err := core.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	if by := strings.ToLower(strings.TrimSpace(req.SortBy)); by != "" {
		valid := false
		for _, k := range sortKeys {
			valid = valid || k == by
		}
		if !valid {
			return nil, &core.ValidationError{Entity: "filter", Errors: []core.FieldError{{
				Field: "sort", Kind: core.KindInvalidEnum, Message: "must be one of " + strings.Join(sortKeys, ", "),
			}}}
		}
		filter.SortBy = by
	}

	quotes, err := s.quotes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &QuoteListResult{Quotes: make([]QuoteResult, 0, len(quotes))}
	for i := range quotes {
		out.Quotes = append(out.Quotes, *newQuoteResult(&quotes[i]))
	}
	return out, nil
}

func (s *appService) SaveQuote(ctx context.Context, q *core.Quote) (*QuoteResult, error) {
	saved, err := s.quotes.Save(ctx, q)
	if err != nil {
		return nil, err
	}
	return newQuoteResult(saved), nil
}

func (s *appService) SaveQuoteJSON(ctx context.Context, id string, body []byte) (*QuoteResult, error) {
	rec, err := core.DecodeRecord(body)
	if err != nil {
		return nil, err
	}
	if id != "" {
		rec["id"] = id
	}
	q, err := core.ValidateQuote(core.ApplyQuoteDefaults(rec, s.now()))
	if err != nil {
		return nil, err
	}
	return s.SaveQuote(ctx, q)
}

func (s *appService) UpdateQuoteFields(ctx context.Context, req UpdateFieldsRequest) (*QuoteResult, error) {
	q, err := s.quotes.Get(ctx, req.QuoteID)
	if err != nil {
		return nil, err
	}
	for name, value := range req.Fields {
		field, err := core.ParseQuoteField(name)
		if err != nil {
			return nil, err
		}
		if err := core.SetQuoteField(q, field, value); err != nil {
			return nil, err
		}
	}
	for _, edit := range req.Items {
		if edit.Index < 0 || edit.Index >= len(q.Items) {
			return nil, &core.ValidationError{Entity: "quote", Errors: []core.FieldError{{
				Field: fmt.Sprintf("items[%d]", edit.Index), Kind: core.KindTooBig,
				Message: fmt.Sprintf("quote has %d items", len(q.Items)),
			}}}
		}
		field, err := core.ParseItemField(edit.Field)
		if err != nil {
			return nil, err
		}
		if err := core.SetItemField(&q.Items[edit.Index], field, edit.Value); err != nil {
			return nil, err
		}
	}
	return s.SaveQuote(ctx, q)
}

func (s *appService) DeleteQuote(ctx context.Context, id string) error {
	return s.quotes.Delete(ctx, id)
}

func (s *appService) SetQuoteStatus(ctx context.Context, id, status string) (*QuoteResult, error) {
	st, err := core.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	q, err := s.quotes.SetStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	return newQuoteResult(q), nil
}

func (s *appService) ReviseQuote(ctx context.Context, id string) (*RevisionResult, error) {
	revision, original, err := s.quotes.Revise(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RevisionResult{Revision: newQuoteResult(revision), Original: newQuoteResult(original)}, nil
}

func (s *appService) DuplicateQuote(ctx context.Context, id string) (*QuoteResult, error) {
	q, err := s.quotes.Duplicate(ctx, id)
	if err != nil {
		return nil, err
	}
	return newQuoteResult(q), nil
}

func (s *appService) CalculateTotals(ctx context.Context, body []byte) (*TotalsResult, error) {
	q, err := core.ParseQuote(body, s.now())
	if err != nil {
		return nil, err
	}
	t := q.Totals()
	return &TotalsResult{Totals: t.Rounded(), Precise: t}, nil
}

func documentName(q *core.Quote, ext string) string {
	name := q.QuoteNumber
	if name == "" {
		name = "quote-" + q.ID
	}
	return name + "." + ext
}

func (s *appService) RenderQuotePDF(ctx context.Context, id string) (*DocumentResult, error) {
	q, err := s.quotes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Generate(q)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{Filename: documentName(q, "pdf"), ContentType: "application/pdf", Data: data}, nil
}

func (s *appService) RenderQuoteHTML(ctx context.Context, id string) (*DocumentResult, error) {
	q, err := s.quotes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.html.Render(q)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{Filename: documentName(q, "html"), ContentType: "text/html; charset=utf-8", Data: data}, nil
}

func (s *appService) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	return s.directory.ListCustomers(ctx)
}

func (s *appService) GetCustomer(ctx context.Context, id string) (*core.Customer, error) {
	return s.directory.GetCustomer(ctx, id)
}

func (s *appService) FindCustomer(ctx context.Context, name string) (*core.Customer, error) {
	return s.directory.FindCustomer(ctx, name)
}

func (s *appService) SaveCustomer(ctx context.Context, c *core.Customer) (*core.Customer, error) {
	return s.directory.SaveCustomer(ctx, c)
}

func (s *appService) DeleteCustomer(ctx context.Context, id string) error {
	return s.directory.DeleteCustomer(ctx, id)
}

func (s *appService) ListProfiles(ctx context.Context) ([]core.CompanyProfile, error) {
	return s.directory.ListProfiles(ctx)
}

func (s *appService) GetProfile(ctx context.Context, id string) (*core.CompanyProfile, error) {
	return s.directory.GetProfile(ctx, id)
}

func (s *appService) FindProfile(ctx context.Context, name string) (*core.CompanyProfile, error) {
	return s.directory.FindProfile(ctx, name)
}

func (s *appService) SaveProfile(ctx context.Context, p *core.CompanyProfile) (*core.CompanyProfile, error) {
	return s.directory.SaveProfile(ctx, p)
}

func (s *appService) DeleteProfile(ctx context.Context, id string) error {
	return s.directory.DeleteProfile(ctx, id)
}

func draftKey(owner string) string {
	return "draft:" + strings.ToLower(strings.TrimSpace(owner))
}

func (s *appService) LoadDraft(ctx context.Context, owner string) *DraftResult {
	fresh := func(reason error) *DraftResult {
		s.log.Debug().Err(reason).Str("owner", owner).Msg("starting a fresh draft")
		q := core.NewQuote(s.now())
		return &DraftResult{Quote: q, Totals: q.Totals().Rounded()}
	}

	raw, err := s.drafts.LoadDraft(ctx, draftKey(owner))
	if err != nil {
		return fresh(err)
	}
	q, err := core.ParseQuote(raw, s.now())
	if err != nil {
		return fresh(fmt.Errorf("hydrate draft: %w", err))
	}
	return &DraftResult{Quote: q, Totals: q.Totals().Rounded(), Restored: true}
}

func (s *appService) SaveDraft(ctx context.Context, owner string, q *core.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.drafts.SaveDraft(ctx, draftKey(owner), data)
}

func (s *appService) SaveDraftJSON(ctx context.Context, owner string, body []byte) error {
	if _, err := core.DecodeRecord(body); err != nil {
		return err
	}
	return s.drafts.SaveDraft(ctx, draftKey(owner), body)
}

func (s *appService) DiscardDraft(ctx context.Context, owner string) error {
	return s.drafts.DeleteDraft(ctx, draftKey(owner))
}

func (s *appService) DraftText(ctx context.Context, req ai.DraftTextRequest) (string, error) {
	return s.agent.DraftText(ctx, req)
}

func (s *appService) SuggestImprovements(ctx context.Context, q *core.Quote) (*SuggestionsResult, error) {
	suggestions, err := s.agent.SuggestImprovements(ctx, q)
	if err != nil {
		return nil, err
	}
	return &SuggestionsResult{Suggestions: suggestions}, nil
}

func (s *appService) SuggestImprovementsJSON(ctx context.Context, body []byte) (*SuggestionsResult, error) {
	q, err := core.ParseQuote(body, s.now())
	if err != nil {
		return nil, err
	}
	return s.SuggestImprovements(ctx, q)
}

func (s *appService) DraftItems(ctx context.Context, description string) ([]core.LineItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &core.ValidationError{Entity: "request", Errors: []core.FieldError{{
			Field: "description", Kind: core.KindRequired, Message: "is required",
		}}}
	}
	return s.agent.DraftItems(ctx, description)
}

func (s *appService) OptimizeLogo(ctx context.Context, dataURL string) (string, error) {
	return s.logos.Optimize(ctx, dataURL)
}

func (s *appService) UploadLogo(ctx context.Context, req LogoUploadRequest) (*LogoResult, error) {
	if len(req.Data) == 0 {
		return nil, &core.ValidationError{Entity: "logo", Errors: []core.FieldError{{
			Field: "image", Kind: core.KindRequired, Message: "is required",
		}}}
	}
	in := core.DataURL{MIME: strings.ToLower(req.ContentType), Data: req.Data}
	optimized, err := s.logos.Optimize(ctx, in.String())
	if err != nil {
		return nil, err
	}
	out, err := core.ParseDataURL(optimized)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, &core.ExternalServiceError{Service: "blob", Err: blob.ErrMissingCredential}
	}

	ext := "png"
	if out.MIME == "image/jpeg" {
		ext = "jpg"
	}
	path := fmt.Sprintf("logos/%s.%s", core.NewID(), ext)
	url, err := s.storage.Upload(ctx, path, out.MIME, out.Data)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("logo upload failed")
		return nil, err
	}
	s.log.Info().Str("path", path).Str("filename", req.Filename).Msg("logo uploaded")
	return &LogoResult{URL: url, DataURL: optimized}, nil
}

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{UserID: u.ID, Username: u.Username, Role: string(u.Role)}, nil
}

func (s *appService) GetUser(ctx context.Context, id string) (*UserResult, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return newUserResult(u), nil
}

func (s *appService) ListUsers(ctx context.Context) ([]UserResult, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserResult, 0, len(users))
	for i := range users {
		out = append(out, *newUserResult(&users[i]))
	}
	return out, nil
}

func (s *appService) CreateUser(ctx context.Context, in core.UserInput) (*UserResult, error) {
	u, err := s.users.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return newUserResult(u), nil
}

func (s *appService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	return s.users.EnsureAdmin(ctx, username, password)
}
