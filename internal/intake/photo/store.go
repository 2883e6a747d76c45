// Package photo holds the in-memory ordered collection of photo
// references attached to a draft record. References are opaque strings —
// local URIs before upload, remote URLs after — and order is
// significant: the first photo is the record's cover.
//
// Removal is destructive, so it is two-phase: the UI marks an index for
// removal, shows its confirmation dialog, and then either confirms or
// cancels. Only one removal may be pending at a time; the guard lives
// here rather than in the UI so a second removal cannot race the first.
package photo

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned for operations on a position the
	// store does not have.
	ErrIndexOutOfRange = errors.New("photo index out of range")

	// ErrRemovalPending is returned when a removal is marked while
	// another one is still awaiting confirmation.
	ErrRemovalPending = errors.New("another removal is awaiting confirmation")

	// ErrNoRemovalPending is returned when confirm or cancel is called
	// with nothing marked.
	ErrNoRemovalPending = errors.New("no removal is pending")
)

// Store is an ordered container of photo references. The zero value is
// an empty, usable store — "no photos yet" is a valid, displayable
// state and never blocks record submission.
//
// Store is not safe for concurrent use; it is owned by a single form
// coordinator on the UI event loop.
type Store struct {
	refs    []string
	pending int // index marked for removal; -1 when none
	marked  bool
}

// New returns a store seeded with the given references, in order.
func New(refs ...string) *Store {
	s := &Store{pending: -1}
	s.Add(refs...)
	return s
}

// Add appends references to the end of the collection, preserving prior
// order. No deduplication is performed: visually identical photos may be
// added twice, and that is accepted behavior.
func (s *Store) Add(refs ...string) {
	s.refs = append(s.refs, refs...)
}

// List returns a copy of the references in order.
func (s *Store) List() []string {
	out := make([]string, len(s.refs))
	copy(out, s.refs)
	return out
}

// Len returns the number of attached photos.
func (s *Store) Len() int { return len(s.refs) }

// Empty reports whether the store has no photos.
func (s *Store) Empty() bool { return len(s.refs) == 0 }

// MarkRemoval flags the photo at index i for removal, to be finished by
// ConfirmRemoval or abandoned by CancelRemoval. Marking while another
// removal is pending fails with ErrRemovalPending.
func (s *Store) MarkRemoval(i int) error {
	if s.marked {
		return ErrRemovalPending
	}
	if i < 0 || i >= len(s.refs) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.refs))
	}
	s.pending = i
	s.marked = true
	return nil
}

// PendingRemoval returns the index currently marked for removal, if any.
func (s *Store) PendingRemoval() (int, bool) {
	return s.pending, s.marked
}

// ConfirmRemoval deletes the marked photo, preserving the relative order
// of the remaining references.
func (s *Store) ConfirmRemoval() error {
	if !s.marked {
		return ErrNoRemovalPending
	}
	i := s.pending
	s.refs = append(s.refs[:i], s.refs[i+1:]...)
	s.pending = -1
	s.marked = false
	return nil
}

// CancelRemoval abandons the pending removal, leaving the store intact.
func (s *Store) CancelRemoval() error {
	if !s.marked {
		return ErrNoRemovalPending
	}
	s.pending = -1
	s.marked = false
	return nil
}
