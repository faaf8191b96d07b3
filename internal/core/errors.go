package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a document save is based on a stale version.
	ErrConflict = errors.New("document was modified by another writer")
)

// FieldErrorKind classifies a single field violation.
type FieldErrorKind string

const (
	KindRequired     FieldErrorKind = "required"
	KindInvalidType  FieldErrorKind = "invalid_type"
	KindInvalidEmail FieldErrorKind = "invalid_email"
	KindTooSmall     FieldErrorKind = "too_small"
	KindTooBig       FieldErrorKind = "too_big"
	KindInvalidEnum  FieldErrorKind = "invalid_enum"
	KindInvalidDate  FieldErrorKind = "invalid_date"
)

type FieldError struct {
	Field   string         `json:"field"`
	Kind    FieldErrorKind `json:"kind"`
	Message string         `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError carries every violated constraint of a record, not just the first.
type ValidationError struct {
	Entity string       `json:"entity"`
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(msgs, "; "))
}

// Has reports whether a violation of kind exists on field.
func (e *ValidationError) Has(field string, kind FieldErrorKind) bool {
	for _, fe := range e.Errors {
		if fe.Field == field && fe.Kind == kind {
			return true
		}
	}
	return false
}

// StorageWriteError wraps a failed document or draft write. Writes are never retried.
type StorageWriteError struct {
	Op  string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage write failed (%s): %v", e.Op, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// ExternalServiceError wraps a failed or malformed call to the AI or blob service.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s service failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
