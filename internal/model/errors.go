package model

import (
	"fmt"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// IdentityError marks a record that exposes no field usable as a dedup key.
// Per-record: the orchestrator skips the record and continues the batch.
type IdentityError struct {
	Title    string
	Location string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("no usable identity field (title=%q location=%q)", e.Title, e.Location)
}
