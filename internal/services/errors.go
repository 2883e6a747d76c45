// Package services defines the business logic for first-impression records.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrRecordNotFound indicates that the requested record does not exist or
	// is not accessible to the current agent.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNameRequired is returned when a create or update payload carries an
	// empty client name. A placeholder name is fine; an empty one is not.
	ErrNameRequired = errors.New("client name is required")

	// ErrPartialLocation is returned when a payload carries only one half of
	// a coordinate pair. A location fix is a single immutable pair.
	ErrPartialLocation = errors.New("latitude and longitude must be provided together")

	// ErrEmptySignature is returned when the signature endpoint is called
	// with an empty image payload.
	ErrEmptySignature = errors.New("signature image is empty")

	// ErrTooManyPhotos is returned when a create or update payload carries
	// more photo references than the configured cap allows.
	ErrTooManyPhotos = errors.New("too many photos")

	// ErrInvalidTransition is returned when a lifecycle transition is not
	// permitted from the record's current status (e.g. signing an already
	// signed record, completing a draft).
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrNotDraft is returned when a draft-only operation (update, delete)
	// is attempted on a record that has left the draft state.
	ErrNotDraft = errors.New("record is no longer a draft")
)
