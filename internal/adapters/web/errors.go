package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"quote-drafter/internal/core"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Details   []core.FieldError `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, errorResponse{Error: message, Code: code}, status)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, resp errorResponse, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp.RequestID = requestIDFromContext(r.Context())
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeCreated writes a JSON response with status 201.
func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps a service error onto a status code and error code.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *core.ValidationError
		storage    *core.StorageWriteError
		external   *core.ExternalServiceError
	)
	switch {
	case errors.As(err, &validation):
		writeErrorResponse(w, r, errorResponse{
			Error: validation.Error(), Code: "VALIDATION_FAILED", Details: validation.Errors,
		}, http.StatusBadRequest)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrConflict):
		writeError(w, r, "the data was changed by someone else; reload and try again", "CONFLICT", http.StatusConflict)
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, r, err.Error(), "UNAUTHORIZED", http.StatusUnauthorized)
	case errors.As(err, &storage):
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("storage write failed")
		writeError(w, r, "could not save changes", "STORAGE_WRITE_FAILED", http.StatusInternalServerError)
	case errors.As(err, &external):
		h.log.Warn().Err(err).Str("service", external.Service).Msg("external service failed")
		writeError(w, r, err.Error(), "EXTERNAL_SERVICE_FAILED", http.StatusBadGateway)
	default:
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("request failed")
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
