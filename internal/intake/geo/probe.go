// Package geo acquires a single device location fix for the intake form.
//
// Acquisition is fire-once-per-user-action rather than continuous
// tracking: the use case is "where am I standing right now". The probe
// keeps no backoff or retry state — repeated calls are safe and cheap,
// and the caller decides when to retry (typically from a UI affordance
// after a permission denial or provider failure).
package geo

import (
	"context"
	"errors"

	"github.com/pcosta/go-intake-backend/internal/domain"
)

var (
	// ErrPermissionDenied means the user (or OS policy) refused location
	// access. Recoverable: the caller may surface a retry affordance and
	// call Acquire again. It never blocks form submission — location is
	// optional on the record.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrUnavailable means the provider failed to produce a fix
	// (transport error, GPS off, timeout). Also recoverable by retrying.
	ErrUnavailable = errors.New("location unavailable")
)

// Probe acquires device coordinates. Implementations wrap the platform
// location subsystem; they must return one of the package sentinel
// errors for the recoverable cases and respect ctx cancellation — a fix
// that arrives after the caller abandoned the screen is discarded, not
// delivered late.
type Probe interface {
	Acquire(ctx context.Context) (domain.GeoPoint, error)
}

// ProbeFunc adapts a plain function to the Probe interface.
type ProbeFunc func(ctx context.Context) (domain.GeoPoint, error)

// Acquire implements Probe.
func (f ProbeFunc) Acquire(ctx context.Context) (domain.GeoPoint, error) { return f(ctx) }

// Static returns a Probe that always yields the given point. Useful in
// tests and for manual-entry fallbacks.
func Static(pt domain.GeoPoint) Probe {
	return ProbeFunc(func(ctx context.Context) (domain.GeoPoint, error) {
		if err := ctx.Err(); err != nil {
			return domain.GeoPoint{}, err
		}
		return pt, nil
	})
}

// Denied returns a Probe that always reports ErrPermissionDenied.
func Denied() Probe {
	return ProbeFunc(func(ctx context.Context) (domain.GeoPoint, error) {
		return domain.GeoPoint{}, ErrPermissionDenied
	})
}

// Recoverable reports whether err is one of the probe failures the user
// can retry from the form (as opposed to a cancelled context).
func Recoverable(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrUnavailable)
}
