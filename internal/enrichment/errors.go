package enrichment

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotConfigured indicates the events service base URL is missing.
var ErrNotConfigured = errors.New("events service is not configured")

// TimeoutError is returned when the events service does not answer within
// the per-request timeout. The request is aborted.
type TimeoutError struct {
	RecordID string
	Timeout  time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("event %s: no response within %s", e.RecordID, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// TransportError wraps a network-level failure.
type TransportError struct {
	RecordID string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("event %s: request failed: %v", e.RecordID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseShapeError reports a non-OK status or a body without the expected
// event_data object.
type ResponseShapeError struct {
	RecordID   string
	StatusCode int
	Reason     string
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("event %s: unexpected response (HTTP %d): %s", e.RecordID, e.StatusCode, e.Reason)
}
