package core

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DataURL is a decoded data:<mime>;base64,<payload> string, the form logos
// are exchanged and stored in.
type DataURL struct {
	MIME string
	Data []byte
}

func (d DataURL) String() string {
	return "data:" + d.MIME + ";base64," + base64.StdEncoding.EncodeToString(d.Data)
}

func invalidImage(format string, args ...any) error {
	return &ValidationError{Entity: "logo", Errors: []FieldError{{
		Field: "image", Kind: KindInvalidType, Message: fmt.Sprintf(format, args...),
	}}}
}

// IsDataURL reports whether s looks like a data URL rather than a link.
func IsDataURL(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:")
}

// ParseDataURL decodes a base64 data URL. "image/jpg" is normalized to "image/jpeg".
func ParseDataURL(s string) (DataURL, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return DataURL{}, invalidImage("must be a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURL{}, invalidImage("data URL has no payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return DataURL{}, invalidImage("data URL must be base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return DataURL{}, invalidImage("invalid base64 payload")
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	return DataURL{MIME: mime, Data: data}, nil
}
