// Package apperr defines the error taxonomy shared across the toolkit.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint was violated, typically on slug.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized means the backend rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// RequestError is the single error type surfaced by the API client for a
// failed HTTP exchange. Message carries the server-supplied message when the
// response body was parseable JSON, otherwise the transport status text.
// Status is zero for transport failures that never produced a response.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Is maps well-known statuses onto the sentinel errors so callers can use
// errors.Is without inspecting status codes.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// NewRequestError builds a RequestError from a status and message.
func NewRequestError(status int, message string) *RequestError {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &RequestError{Status: status, Message: message}
}

// ValidationError reports a field-level violation caught before any request
// is sent. These never leave the editing session.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
