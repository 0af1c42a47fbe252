package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when the prompt is blank. Nothing is sent.
	ErrEmptyQuery = errors.New("empty query")
	// ErrInvalidInput covers malformed points and region parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStaleResponse means a newer submission superseded this one.
	ErrStaleResponse = errors.New("stale response discarded")
	// ErrSessionNotFound is returned for unknown or evicted sessions.
	ErrSessionNotFound = errors.New("session not found")
)

// TransportError wraps failures to complete the classification request,
// including non-2xx HTTP responses.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a structurally valid response whose status is not "success".
type ServiceError struct {
	Status string
	Raw    string
}

func (e *ServiceError) Error() string {
	return "Query failed: " + e.Raw
}
