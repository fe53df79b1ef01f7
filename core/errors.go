// Package core holds the error taxonomy shared by every pipeline component.
//
// All provider failures are converted to one of these kinds at the component
// boundary; raw provider errors never reach the HTTP layer.
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured indicates required provider configuration is absent.
	// Permanent until the process is restarted with the missing settings.
	ErrNotConfigured = errors.New("service not configured")

	// ErrStoreUnavailable indicates the vector index was never initialized.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrRateLimited indicates the provider throttled the request and every
	// credential in the pool has been exhausted.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrProvider indicates an upstream failure that is not a rate limit.
	ErrProvider = errors.New("provider request failed")

	// ErrEmptyResult indicates the provider returned no usable data. This is
	// a valid empty state, not a failure; callers route it to fallback copy.
	ErrEmptyResult = errors.New("empty result")
)

// PipelineError annotates a taxonomy error with the operation and document
// it occurred in.
type PipelineError struct {
	Op         string
	DocumentID string
	Err        error
}

func (e *PipelineError) Error() string {
	if e.DocumentID != "" {
		return fmt.Sprintf("%s [document=%s]: %v", e.Op, e.DocumentID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func NewPipelineError(op, documentID string, err error) *PipelineError {
	return &PipelineError{Op: op, DocumentID: documentID, Err: err}
}
