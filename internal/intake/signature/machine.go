// Package signature implements the canvas-driven signature capture flow
// as a tagged state machine, so invalid moves (confirming an empty
// canvas, double-submitting while a call is in flight) are rejected by
// state rather than by a disabled button.
//
// States:
//
//	Empty → Drawing → Captured → Submitting → done (torn down)
//	                 ↘ Clear ↙
//
// Capture is debounced to "pen lifted": the encoded payload is taken at
// EndStroke, not per stroke segment. Clearing always means re-drawing
// from scratch — there is no per-stroke undo; that is an accepted
// simplification of the flow, not an oversight.
//
// The signature step is only reachable from a persisted-record context,
// which is what makes the ordering guarantee (no attach before a
// successful create) structural rather than checked.
package signature

import (
	"context"
	"errors"
	"sync"

	"github.com/pcosta/go-intake-backend/internal/domain"
)

// State identifies the machine's current phase.
type State int

const (
	// Empty: the canvas has no strokes; confirm is unreachable.
	Empty State = iota
	// Drawing: the user is actively drawing.
	Drawing
	// Captured: an encoded image payload has been extracted; the
	// preview shows Clear and Confirm.
	Captured
	// Submitting: the signature call is in flight; re-entry is rejected.
	Submitting
	// Done: the record is signed and the machine is torn down.
	Done
)

// String returns the state name for logs and test failure messages.
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Drawing:
		return "drawing"
	case Captured:
		return "captured"
	case Submitting:
		return "submitting"
	case Done:
		return "done"
	}
	return "unknown"
}

var (
	// ErrNotCaptured is returned when Confirm or Clear is invoked with
	// no captured payload (empty canvas or mid-stroke).
	ErrNotCaptured = errors.New("no captured signature")

	// ErrNotDrawing is returned when EndStroke arrives without a
	// matching BeginStroke.
	ErrNotDrawing = errors.New("no stroke in progress")

	// ErrEmptyStroke is returned when the pen lifts with an empty
	// payload — nothing was actually drawn.
	ErrEmptyStroke = errors.New("stroke produced no image payload")

	// ErrSubmitInFlight is returned for a Confirm while the previous
	// confirmation is still being submitted.
	ErrSubmitInFlight = errors.New("signature submission already in flight")

	// ErrTornDown is returned for any action after a successful submit.
	ErrTornDown = errors.New("signature step already completed")
)

// Submitter performs the remote draft → signed transition. It is
// satisfied by *client.Lifecycle.
type Submitter interface {
	AttachSignature(ctx context.Context, id, imagePayload string) (*domain.FirstImpression, error)
}

// Machine coordinates signature capture for one persisted record.
// Construct with New; drive it with BeginStroke / EndStroke / Clear /
// Confirm. Methods are safe for concurrent use so that a double-tap on
// Confirm cannot produce two submissions.
type Machine struct {
	mu       sync.Mutex
	state    State
	payload  string
	recordID string
	sub      Submitter
}

// New returns a machine for the record with the given server-assigned
// id. The id must come from an already-persisted record.
func New(recordID string, sub Submitter) *Machine {
	return &Machine{state: Empty, recordID: recordID, sub: sub}
}

// State returns the current phase.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Payload returns the captured image payload, empty unless the machine
// is in Captured or Submitting.
func (m *Machine) Payload() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payload
}

// BeginStroke marks the start of pen contact. Starting a stroke over a
// captured preview resumes drawing and discards nothing yet — the
// payload is re-extracted at the next pen lift.
func (m *Machine) BeginStroke() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Empty, Drawing, Captured:
		m.state = Drawing
		return nil
	case Submitting:
		return ErrSubmitInFlight
	default:
		return ErrTornDown
	}
}

// EndStroke marks pen lift and captures the canvas as an encoded image
// payload. This is the only transition into Captured.
func (m *Machine) EndStroke(imagePayload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Drawing {
		return ErrNotDrawing
	}
	if imagePayload == "" {
		return ErrEmptyStroke
	}
	m.payload = imagePayload
	m.state = Captured
	return nil
}

// Clear discards the captured payload and returns to Empty; the user
// must re-draw from scratch.
func (m *Machine) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Drawing, Captured:
		m.payload = ""
		m.state = Empty
		return nil
	case Submitting:
		return ErrSubmitInFlight
	case Done:
		return ErrTornDown
	default:
		return ErrNotCaptured
	}
}

// Confirm submits the captured payload to the record's signature
// endpoint: exactly one network call per confirmation. On success the
// machine is torn down and the signed record is returned. On failure the
// machine returns to Captured with the payload intact, so the user can
// retry without re-drawing.
func (m *Machine) Confirm(ctx context.Context) (*domain.FirstImpression, error) {
	m.mu.Lock()
	switch m.state {
	case Submitting:
		m.mu.Unlock()
		return nil, ErrSubmitInFlight
	case Done:
		m.mu.Unlock()
		return nil, ErrTornDown
	case Captured:
		// fall through to submit
	default:
		m.mu.Unlock()
		return nil, ErrNotCaptured
	}
	m.state = Submitting
	payload := m.payload
	id := m.recordID
	m.mu.Unlock()

	rec, err := m.sub.AttachSignature(ctx, id, payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = Captured
		return nil, err
	}
	m.state = Done
	m.payload = ""
	return rec, nil
}
