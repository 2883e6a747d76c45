package signature

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pcosta/go-intake-backend/internal/domain"
)

// fakeSubmitter counts calls and lets a test hold the submission open.
type fakeSubmitter struct {
	calls   int32
	err     error
	block   chan struct{} // when non-nil, submission waits until closed
	gotID   string
	gotImag string
}

func (f *fakeSubmitter) AttachSignature(ctx context.Context, id, imagePayload string) (*domain.FirstImpression, error) {
	atomic.AddInt32(&f.calls, 1)
	f.gotID, f.gotImag = id, imagePayload
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.FirstImpression{ID: id, Status: domain.StatusSigned}, nil
}

func captured(t *testing.T, sub Submitter) *Machine {
	t.Helper()
	m := New("fi-1", sub)
	if err := m.BeginStroke(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.EndStroke("iVBORw0KGgo="); err != nil {
		t.Fatalf("end: %v", err)
	}
	return m
}

func TestConfirm_UnreachableFromEmpty(t *testing.T) {
	sub := &fakeSubmitter{}
	m := New("fi-1", sub)

	if _, err := m.Confirm(context.Background()); !errors.Is(err, ErrNotCaptured) {
		t.Fatalf("confirm from empty: %v", err)
	}
	if err := m.BeginStroke(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := m.Confirm(context.Background()); !errors.Is(err, ErrNotCaptured) {
		t.Fatalf("confirm mid-stroke: %v", err)
	}
	// No network call was made before capture.
	if atomic.LoadInt32(&sub.calls) != 0 {
		t.Fatalf("submitter called %d times before capture", sub.calls)
	}
}

func TestEndStroke_OnlyWhileDrawing(t *testing.T) {
	m := New("fi-1", &fakeSubmitter{})
	if err := m.EndStroke("p"); !errors.Is(err, ErrNotDrawing) {
		t.Fatalf("end without begin: %v", err)
	}
	_ = m.BeginStroke()
	if err := m.EndStroke(""); !errors.Is(err, ErrEmptyStroke) {
		t.Fatalf("empty payload: %v", err)
	}
	if m.State() != Drawing {
		t.Fatalf("state = %v; empty stroke must not capture", m.State())
	}
}

func TestCaptureAndClear(t *testing.T) {
	m := captured(t, &fakeSubmitter{})
	if m.State() != Captured || m.Payload() == "" {
		t.Fatalf("state = %v payload = %q", m.State(), m.Payload())
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if m.State() != Empty || m.Payload() != "" {
		t.Fatalf("clear must discard the payload (state %v)", m.State())
	}
	// Cleared means re-draw from scratch; confirm is unreachable again.
	if _, err := m.Confirm(context.Background()); !errors.Is(err, ErrNotCaptured) {
		t.Fatalf("confirm after clear: %v", err)
	}
}

func TestConfirm_Success(t *testing.T) {
	sub := &fakeSubmitter{}
	m := captured(t, sub)

	rec, err := m.Confirm(context.Background())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if rec.Status != domain.StatusSigned {
		t.Fatalf("status = %q; want signed", rec.Status)
	}
	if sub.gotID != "fi-1" || sub.gotImag != "iVBORw0KGgo=" {
		t.Fatalf("submitted (%q, %q)", sub.gotID, sub.gotImag)
	}
	if m.State() != Done {
		t.Fatalf("state = %v; want done", m.State())
	}
	// Torn down: nothing else is accepted.
	if err := m.BeginStroke(); !errors.Is(err, ErrTornDown) {
		t.Fatalf("begin after done: %v", err)
	}
	if _, err := m.Confirm(context.Background()); !errors.Is(err, ErrTornDown) {
		t.Fatalf("confirm after done: %v", err)
	}
}

func TestConfirm_FailureKeepsPayloadForRetry(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("boom")}
	m := captured(t, sub)

	if _, err := m.Confirm(context.Background()); err == nil {
		t.Fatalf("expected failure")
	}
	if m.State() != Captured {
		t.Fatalf("state = %v; failure must return to captured", m.State())
	}
	if m.Payload() != "iVBORw0KGgo=" {
		t.Fatalf("payload must survive a failed submit")
	}

	// Retry without re-drawing succeeds.
	sub.err = nil
	if _, err := m.Confirm(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if atomic.LoadInt32(&sub.calls) != 2 {
		t.Fatalf("calls = %d; want 2", sub.calls)
	}
}

func TestConfirm_DoubleTapMakesOneCall(t *testing.T) {
	sub := &fakeSubmitter{block: make(chan struct{})}
	m := captured(t, sub)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := m.Confirm(context.Background()); err != nil {
			t.Errorf("first confirm: %v", err)
		}
	}()

	// Wait for the first confirmation to be in flight.
	for atomic.LoadInt32(&sub.calls) == 0 {
		runtime.Gosched()
	}

	// The second tap is rejected by state, without a second call.
	if _, err := m.Confirm(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("second confirm: %v; want ErrSubmitInFlight", err)
	}

	close(sub.block)
	wg.Wait()

	if got := atomic.LoadInt32(&sub.calls); got != 1 {
		t.Fatalf("attach calls = %d; want exactly 1", got)
	}
}
