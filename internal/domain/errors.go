package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by single-record lookups with no match.
	ErrNotFound = errors.New("catalog record not found")

	// ErrMalformedRecord marks a source row without its required reference.
	ErrMalformedRecord = errors.New("catalog row without reference")
)

// ValidationError reports a malformed or missing request parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// RetrievalError reports a failed or malformed answer from the retrieval source.
type RetrievalError struct {
	Strategy string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("catalog retrieval (%s) failed: %v", e.Strategy, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
