package web

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"quote-drafter/internal/app"
	"quote-drafter/internal/metrics"
	webui "quote-drafter/web"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc        app.ApplicationService
	router     chi.Router
	jwtSecret  string
	fileServer http.Handler
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, log zerolog.Logger, m *metrics.Metrics) http.Handler {
	staticFS, err := fs.Sub(webui.Static, "static")
	if err != nil {
		panic("web/static embed sub-FS failed: " + err.Error())
	}

	h := &Handler{
		svc:        svc,
		jwtSecret:  jwtSecret,
		fileServer: http.FileServer(http.FS(staticFS)),
		log:        log.With().Str("component", "http").Logger(),
		metrics:    m,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(h.Logger)
	r.Use(h.Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Public ───────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFileFS(w, req, staticFS, "index.html")
	})
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/static", h.fileServer).ServeHTTP(w, req)
	})

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Logo upload: body limit is managed inside the handler (multipart).
		r.Post("/api/logo/upload", h.uploadLogo)

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(2 << 20))

			r.Get("/api/auth/me", h.me)

			// Quotes
			r.Get("/api/quotes", h.listQuotes)
			r.Post("/api/quotes", h.createQuote)
			r.Get("/api/quotes/{id}", h.getQuote)
			r.Put("/api/quotes/{id}", h.replaceQuote)
			r.Delete("/api/quotes/{id}", h.deleteQuote)
			r.Patch("/api/quotes/{id}/fields", h.updateQuoteFields)
			r.Post("/api/quotes/{id}/status", h.setQuoteStatus)
			r.Post("/api/quotes/{id}/revise", h.reviseQuote)
			r.Post("/api/quotes/{id}/duplicate", h.duplicateQuote)
			r.Get("/api/quotes/{id}/totals", h.quoteTotals)
			r.Get("/api/quotes/{id}/pdf", h.quotePDF)
			r.Get("/api/quotes/{id}/preview", h.quotePreview)
			r.Post("/api/totals", h.calculateTotals)

			// Directory
			r.Get("/api/customers", h.listCustomers)
			r.Post("/api/customers", h.createCustomer)
			r.Get("/api/customers/{id}", h.getCustomer)
			r.Put("/api/customers/{id}", h.updateCustomer)
			r.Delete("/api/customers/{id}", h.deleteCustomer)
			r.Get("/api/profiles", h.listProfiles)
			r.Post("/api/profiles", h.createProfile)
			r.Get("/api/profiles/{id}", h.getProfile)
			r.Put("/api/profiles/{id}", h.updateProfile)
			r.Delete("/api/profiles/{id}", h.deleteProfile)

			// Autosaved draft of the signed-in user
			r.Get("/api/draft", h.getDraft)
			r.Put("/api/draft", h.saveDraft)
			r.Delete("/api/draft", h.discardDraft)

			// AI
			r.Post("/api/ai/draft", h.aiDraft)
			r.Post("/api/ai/suggest", h.aiSuggest)
			r.Post("/api/ai/items", h.aiItems)
			r.Post("/api/ai/logo", h.aiLogo)

			// Users (admin only)
			r.Group(func(r chi.Router) {
				r.Use(RequireRole("admin"))
				r.Get("/api/users", h.listUsers)
				r.Post("/api/users", h.createUser)
			})
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// readBody returns the raw request body for handlers that run it through
// the defaults + validation pipeline themselves.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		writeError(w, r, "cannot read body", "BAD_REQUEST", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}
