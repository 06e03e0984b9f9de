package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a referenced session or plan does not exist
	// or has expired.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates that a conditional update lost a concurrent race.
	// For conversion claims the caller treats it as success.
	ErrConflict = errors.New("conflicting concurrent update")
	// ErrUpstream indicates a failure in an external collaborator (store or
	// LLM provider).
	ErrUpstream = errors.New("upstream failure")
)

// ValidationError reports a health input that is missing or outside its
// declared range. It is surfaced verbatim to the caller and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
