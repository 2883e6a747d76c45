// Package client implements the HTTP client used by the capture
// subsystem to drive a record's remote lifecycle. This file defines the
// typed outcomes every operation can produce. Callers branch with
// errors.As / errors.Is; nothing here is ever swallowed silently.
//
// Taxonomy (mirrors the server's error envelope):
//   - *ValidationError: recoverable, field-addressable (4xx). The form
//     maps Fields back onto the inputs that caused them.
//   - *InvalidStateError: the requested transition is not permitted for
//     the record's current status (409). Surfaced to the user, never
//     ignored.
//   - *NotFoundError: the record does not exist or belongs to someone
//     else (404).
//   - *TransportError: network failure, 5xx, or rate limiting (429) —
//     the unchanged request can succeed if retried later. Retryable by
//     the caller; no automatic retry or backoff is built in — retrying
//     is a UI or operator decision.
package client

import "fmt"

// ValidationError is a recoverable request failure addressed to specific
// fields. Fields maps the offending input name to a message; it may be
// empty when the server could not attribute the failure.
type ValidationError struct {
	Code    string
	Message string
	Fields  map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation failed (%s): %v", e.Code, e.Fields)
	}
	return fmt.Sprintf("validation failed (%s): %s", e.Code, e.Message)
}

// InvalidStateError reports a lifecycle transition the record's current
// status does not permit (signing a signed record, deleting a non-draft).
type InvalidStateError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state (%s): %s", e.Code, e.Message)
}

// NotFoundError reports that the addressed record does not exist.
type NotFoundError struct {
	Op      string
	Message string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: record not found", e.Op)
}

// TransportError reports a network failure, a server-side (5xx)
// failure, or a rate-limited (429) request. StatusCode is zero when the
// request never got a response.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: server failure (status %d)", e.Op, e.StatusCode)
}

// Unwrap exposes the underlying error for errors.Is chains.
func (e *TransportError) Unwrap() error { return e.Err }
