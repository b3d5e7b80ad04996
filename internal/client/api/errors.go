package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoRows is returned when a query demanded exactly one row and the
	// backend matched none.
	ErrNoRows = errors.New("no rows found")

	// ErrUnauthorized marks a request the backend rejected with 401 after
	// the single refresh-and-retry attempt.
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is any non-2xx response, after the single auth retry.
// Detail carries the server-supplied error payload when there was one.
type StatusError struct {
	Status  int
	Message string
	Detail  json.RawMessage
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Unwrap lets callers match 401s with errors.Is(err, ErrUnauthorized).
func (e *StatusError) Unwrap() error {
	if e.Status == 401 {
		return ErrUnauthorized
	}
	return nil
}

// ValidationError is raised synchronously, before any network call, when a
// request is rejected client-side.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}
