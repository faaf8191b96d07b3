package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"quote-drafter/internal/app"
)

// listQuotes handles GET /api/quotes?q=&status=&sort=&order=desc.
func (h *Handler) listQuotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.ListQuotes(r.Context(), app.ListQuotesRequest{
		Query:  q.Get("q"),
		Status: q.Get("status"),
		SortBy: q.Get("sort"),
		Desc:   strings.EqualFold(q.Get("order"), "desc"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res.Quotes)
}

func (h *Handler) createQuote(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := h.svc.SaveQuoteJSON(r.Context(), "", body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeCreated(w, res)
}

func (h *Handler) getQuote(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

// replaceQuote handles PUT /api/quotes/{id}. The quote is created when the id is new.
func (h *Handler) replaceQuote(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := h.svc.SaveQuoteJSON(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) deleteQuote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteQuote(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateQuoteFields(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateFieldsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.QuoteID = chi.URLParam(r, "id")
	res, err := h.svc.UpdateQuoteFields(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) setQuoteStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SetQuoteStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) reviseQuote(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ReviseQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeCreated(w, res)
}

func (h *Handler) duplicateQuote(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.DuplicateQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeCreated(w, res)
}

func (h *Handler) quoteTotals(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res.Totals)
}

// calculateTotals handles POST /api/totals for a quote that has not been saved.
func (h *Handler) calculateTotals(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := h.svc.CalculateTotals(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) quotePDF(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.RenderQuotePDF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	writeDocument(w, doc)
}

func (h *Handler) quotePreview(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.RenderQuoteHTML(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeDocument(w, doc)
}

func writeDocument(w http.ResponseWriter, doc *app.DocumentResult) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", fmt.Sprint(len(doc.Data)))
	_, _ = w.Write(doc.Data)
}
