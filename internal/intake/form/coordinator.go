// Package form implements the multi-section intake form coordinator. A
// Coordinator owns the full draft record — client identity, cadastral
// data, location, photos, observations — mediates between the capture
// components (geo probe, photo store) and the remote lifecycle client,
// and gates submission behind validation and a one-shot submit guard.
//
// A draft is exclusively owned by one Coordinator at a time: only one
// create/edit screen is active per user session, and all mutation
// happens on the UI event loop. The submit guard is still stateful
// (not just a disabled button) so a double-tap cannot create two
// records.
//
// There is no offline write-ahead log: a draft that was never
// successfully submitted lives only in memory and is lost if the
// process terminates. That is an accepted limitation of the tool.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pcosta/go-intake-backend/internal/client"
	"github.com/pcosta/go-intake-backend/internal/domain"
	"github.com/pcosta/go-intake-backend/internal/intake/field"
	"github.com/pcosta/go-intake-backend/internal/intake/geo"
	"github.com/pcosta/go-intake-backend/internal/intake/photo"
)

// Mode distinguishes a brand-new draft from editing a persisted record.
type Mode int

const (
	// ModeCreate starts from an empty draft; location is auto-acquired
	// on entry.
	ModeCreate Mode = iota
	// ModeEdit hydrates from a server-fetched record; location is only
	// re-acquired explicitly, never automatically, to avoid silently
	// overwriting a previously recorded position.
	ModeEdit
)

var (
	// ErrAlreadySubmitted is returned when Submit is called after a
	// successful submission; the create call runs once per draft
	// lifecycle.
	ErrAlreadySubmitted = errors.New("draft already submitted")

	// ErrSubmitInFlight is returned for a Submit while the previous one
	// is still running.
	ErrSubmitInFlight = errors.New("submission already in flight")
)

// ValidationError carries the field-level failures found by Validate.
// Keys are input names ("client_name", "gross_area", …).
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("draft validation failed: %v", e.Fields)
}

// Client is the slice of the lifecycle client the coordinator needs.
// *client.Lifecycle satisfies it.
type Client interface {
	CreateWithKey(ctx context.Context, p client.Payload, key string) (*domain.FirstImpression, error)
	Update(ctx context.Context, id string, p client.Payload) (*domain.FirstImpression, error)
	Get(ctx context.Context, id string) (*domain.FirstImpression, error)
}

// Coordinator owns one draft record. Field values are plain exported
// fields, set directly by the form bindings; numeric text inputs go
// through SetGrossArea / SetUsableArea / SetEstimatedValue so that
// absent, invalid, and valid inputs stay distinguishable.
type Coordinator struct {
	ClientName       string
	ClientPhone      string
	ClientEmail      string
	ClientReferredBy string

	CadastralArticle  string
	Typology          string
	ConservationState string

	AddressText  string
	Observations string

	grossArea      field.Decimal
	usableArea     field.Decimal
	estimatedValue field.Decimal

	photos *photo.Store
	coords *domain.GeoPoint

	mode     Mode
	recordID string

	lc    Client
	probe geo.Probe

	// idemKey deduplicates the create call across retries of the same
	// draft; one key per draft lifecycle.
	idemKey string

	mu        sync.Mutex
	inFlight  bool
	submitted bool
}

// NewCreate returns a coordinator for a fresh draft and auto-acquires
// the device location. The coordinator is always usable; the returned
// error, when non-nil, is the location failure (permission denied,
// provider unavailable) for the caller's retry affordance. A missing
// location never blocks the form.
func NewCreate(ctx context.Context, lc Client, probe geo.Probe) (*Coordinator, error) {
	c := &Coordinator{
		mode:    ModeCreate,
		lc:      lc,
		probe:   probe,
		photos:  photo.New(),
		idemKey: uuid.NewString(),
	}
	var err error
	if probe != nil {
		err = c.AcquireLocation(ctx)
	}
	return c, err
}

// NewEdit fetches the record by id and returns a coordinator hydrated
// from it. Location is not re-acquired; the recorded position stands
// until the user explicitly asks for a new fix.
func NewEdit(ctx context.Context, lc Client, probe geo.Probe, id string) (*Coordinator, error) {
	rec, err := lc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c := &Coordinator{
		mode:     ModeEdit,
		recordID: rec.ID,
		lc:       lc,
		probe:    probe,

		ClientName:        rec.ClientName,
		ClientPhone:       rec.ClientPhone,
		ClientEmail:       rec.ClientEmail,
		ClientReferredBy:  rec.ClientReferredBy,
		CadastralArticle:  rec.CadastralArticle,
		Typology:          rec.Typology,
		ConservationState: rec.ConservationState,
		AddressText:       rec.AddressText,
		Observations:      rec.Observations,

		grossArea:      field.FromFloat(rec.GrossArea),
		usableArea:     field.FromFloat(rec.UsableArea),
		estimatedValue: field.FromFloat(rec.EstimatedValue),

		photos: photo.New(rec.Photos...),
	}
	if pt, ok := rec.Coordinates(); ok {
		c.coords = &pt
	}
	return c, nil
}

// Mode returns whether this coordinator creates or edits.
func (c *Coordinator) Mode() Mode { return c.mode }

// RecordID returns the server-assigned id, empty until the first
// successful create.
func (c *Coordinator) RecordID() string { return c.recordID }

// Photos returns the draft's photo store.
func (c *Coordinator) Photos() *photo.Store { return c.photos }

// SetGrossArea parses the gross-area text input.
func (c *Coordinator) SetGrossArea(text string) { c.grossArea = field.Parse(text) }

// SetUsableArea parses the usable-area text input.
func (c *Coordinator) SetUsableArea(text string) { c.usableArea = field.Parse(text) }

// SetEstimatedValue parses the estimated-value text input.
func (c *Coordinator) SetEstimatedValue(text string) { c.estimatedValue = field.Parse(text) }

// Location returns the draft's coordinate fix, if one is set.
func (c *Coordinator) Location() (domain.GeoPoint, bool) {
	if c.coords == nil {
		return domain.GeoPoint{}, false
	}
	return *c.coords, true
}

// AcquireLocation requests a single fix from the probe and overwrites
// the draft's coordinates on success — never merges. Recoverable probe
// failures leave the existing coordinates untouched and are returned
// for the retry affordance; repeated calls are safe and keep no backoff
// state. A cancelled context discards the fix.
func (c *Coordinator) AcquireLocation(ctx context.Context) error {
	if c.probe == nil {
		return geo.ErrUnavailable
	}
	pt, err := c.probe.Acquire(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		// The user left the screen before the fix arrived; discard it.
		return ctx.Err()
	}
	c.coords = &pt
	return nil
}

// Validate applies the submit gate: client name must be non-empty and
// every numeric field must be absent or a valid decimal. Failures come
// back keyed by field so the form can mark the exact input; nil means
// the draft may be submitted.
func (c *Coordinator) Validate() *ValidationError {
	fields := map[string]string{}
	if strings.TrimSpace(c.ClientName) == "" {
		fields["client_name"] = "required"
	}
	for name, d := range map[string]field.Decimal{
		"gross_area":      c.grossArea,
		"usable_area":     c.usableArea,
		"estimated_value": c.estimatedValue,
	} {
		if d.State() == field.Invalid {
			fields[name] = d.Reason()
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Submit persists the draft: create in create mode, update in edit
// mode. Exactly one create runs per draft lifecycle — a second tap
// while the call is in flight is rejected by state, and a tap after
// success returns ErrAlreadySubmitted. On any failure the draft is
// retained in memory untouched, so the user loses nothing.
func (c *Coordinator) Submit(ctx context.Context) (*domain.FirstImpression, error) {
	if verr := c.Validate(); verr != nil {
		return nil, verr
	}

	c.mu.Lock()
	if c.submitted {
		c.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	c.inFlight = true
	c.mu.Unlock()

	var rec *domain.FirstImpression
	var err error
	p := c.payload()
	if c.mode == ModeCreate {
		rec, err = c.lc.CreateWithKey(ctx, p, c.idemKey)
	} else {
		rec, err = c.lc.Update(ctx, c.recordID, p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		return nil, err
	}
	c.submitted = true
	c.recordID = rec.ID
	return rec, nil
}

// Submitted reports whether the draft has been successfully persisted.
func (c *Coordinator) Submitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted
}

// payload assembles the wire payload from the draft.
func (c *Coordinator) payload() client.Payload {
	p := client.Payload{
		ClientName:       strings.TrimSpace(c.ClientName),
		ClientPhone:      c.ClientPhone,
		ClientEmail:      c.ClientEmail,
		ClientReferredBy: c.ClientReferredBy,

		CadastralArticle:  c.CadastralArticle,
		Typology:          c.Typology,
		ConservationState: c.ConservationState,
		GrossArea:         c.grossArea.Ptr(),
		UsableArea:        c.usableArea.Ptr(),
		EstimatedValue:    c.estimatedValue.Ptr(),

		AddressText:  c.AddressText,
		Photos:       c.photos.List(),
		Observations: c.Observations,
	}
	if c.coords != nil {
		lat, lon := c.coords.Latitude, c.coords.Longitude
		p.Latitude, p.Longitude = &lat, &lon
	}
	return p
}
