package web

import (
	"io"
	"net/http"

	"quote-drafter/internal/ai"
	"quote-drafter/internal/app"
)

const maxLogoSize = 5 << 20 // 5 MB

// allowedMIMETypes is the whitelist for uploaded logos.
var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// aiDraft handles POST /api/ai/draft and returns generated quote text.
func (h *Handler) aiDraft(w http.ResponseWriter, r *http.Request) {
	var req ai.DraftTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	text, err := h.svc.DraftText(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"text": text})
}

// aiSuggest handles POST /api/ai/suggest. The body is a quote, saved or not.
func (h *Handler) aiSuggest(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := h.svc.SuggestImprovementsJSON(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) aiItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	items, err := h.svc.DraftItems(r.Context(), req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"items": items})
}

// aiLogo handles POST /api/ai/logo: a data URL in, the fitted 240×90 data URL out.
func (h *Handler) aiLogo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DataURL string `json:"dataUrl"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.OptimizeLogo(r.Context(), req.DataURL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, app.LogoResult{DataURL: out})
}

// uploadLogo handles POST /api/logo/upload with a multipart "file" field.
func (h *Handler) uploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoSize+(64<<10))
	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		writeError(w, r, "request too large or malformed", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "no file provided", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxLogoSize+1))
	if err != nil {
		writeError(w, r, "cannot read file", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if len(data) > maxLogoSize {
		writeError(w, r, "file too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
		return
	}
	contentType := http.DetectContentType(data)
	if !allowedMIMETypes[contentType] {
		writeError(w, r, "unsupported file type "+contentType, "UNSUPPORTED_MEDIA_TYPE", http.StatusUnsupportedMediaType)
		return
	}

	res, err := h.svc.UploadLogo(r.Context(), app.LogoUploadRequest{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeCreated(w, res)
}
