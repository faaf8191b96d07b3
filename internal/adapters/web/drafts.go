package web

import (
	"net/http"
)

// getDraft handles GET /api/draft. It always answers with a quote: the
// signed-in user's saved draft, or a fresh one.
func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	writeJSON(w, h.svc.LoadDraft(r.Context(), claims.Username))
}

// saveDraft handles PUT /api/draft. Form state is stored as sent, half-filled
// fields included; it is validated when the draft is loaded again.
func (h *Handler) saveDraft(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	claims := authFromContext(r.Context())
	if err := h.svc.SaveDraftJSON(r.Context(), claims.Username, body); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) discardDraft(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if err := h.svc.DiscardDraft(r.Context(), claims.Username); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
