// Package blob uploads files to Supabase Storage.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quote-drafter/internal/core"
)

const serviceName = "blob"

var ErrMissingCredential = errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required")

// Storage puts a file at path and returns its public URL.
type Storage interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}

type SupabaseStorage struct {
	baseURL string
	key     string
	bucket  string
	HTTP    *http.Client
}

func NewSupabaseStorage(baseURL, serviceRoleKey, bucket string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     serviceRoleKey,
		bucket:  bucket,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *SupabaseStorage) objectURL(path string) string {
	return s.baseURL + "/storage/v1/object/" + s.bucket + "/" + escapePath(path)
}

// PublicURL is where a public bucket serves the object at path.
func (s *SupabaseStorage) PublicURL(path string) string {
	return s.baseURL + "/storage/v1/object/public/" + s.bucket + "/" + escapePath(path)
}

func escapePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (s *SupabaseStorage) configured() error {
	if s.baseURL == "" || s.key == "" {
		return &core.ExternalServiceError{Service: serviceName, Err: ErrMissingCredential}
	}
	return nil
}

func (s *SupabaseStorage) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if err := s.configured(); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.objectURL(path), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	s.authorize(req)
	req.Header.Set("x-upsert", "true")

	if err := s.do(req, http.StatusOK, http.StatusCreated); err != nil {
		return "", err
	}
	return s.PublicURL(path), nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, path string) error {
	if err := s.configured(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(path), nil)
	if err != nil {
		return err
	}
	s.authorize(req)
	return s.do(req, http.StatusOK, http.StatusNoContent)
}

func (s *SupabaseStorage) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
}

func (s *SupabaseStorage) do(req *http.Request, okStatus ...int) error {
	resp, err := s.HTTP.Do(req)
	if err != nil {
		return &core.ExternalServiceError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	for _, code := range okStatus {
		if resp.StatusCode == code {
			return nil
		}
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &core.ExternalServiceError{
		Service: serviceName,
		Err:     fmt.Errorf("storage status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
	}
}
