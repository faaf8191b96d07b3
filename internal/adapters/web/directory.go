package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quote-drafter/internal/core"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var c core.Customer
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = ""
	saved, err := h.svc.SaveCustomer(r.Context(), &c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeCreated(w, saved)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var c core.Customer
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = chi.URLParam(r, "id")
	saved, err := h.svc.SaveCustomer(r.Context(), &c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, saved)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.svc.ListProfiles(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, profiles)
}

func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	var p core.CompanyProfile
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = ""
	saved, err := h.svc.SaveProfile(r.Context(), &p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeCreated(w, saved)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var p core.CompanyProfile
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = chi.URLParam(r, "id")
	saved, err := h.svc.SaveProfile(r.Context(), &p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, saved)
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProfile(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
