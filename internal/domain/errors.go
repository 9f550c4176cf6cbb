package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found. For category
	// slugs this is terminal: the page renders as not found, never as an
	// unfiltered listing.
	ErrNotFound = errors.New("not found")
)

// RequestFailedError wraps a network-level failure reaching the backend.
type RequestFailedError struct {
	Cause error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("backend request failed: %v", e.Cause)
}

func (e *RequestFailedError) Unwrap() error { return e.Cause }

// UnexpectedStatusError indicates the backend was reachable but answered
// with a non-success status. Logged distinctly from RequestFailedError,
// displayed the same.
type UnexpectedStatusError struct {
	Status int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("backend returned unexpected status %d", e.Status)
}

// IsRetryable reports whether the error is a transient backend failure
// rather than a definitive not-found.
func IsRetryable(err error) bool {
	var rf *RequestFailedError
	var us *UnexpectedStatusError
	return errors.As(err, &rf) || errors.As(err, &us)
}
