// Package services – ImpressionService
//
// This file implements the ImpressionService, which owns the lifecycle of
// first-impression records. It validates payloads (non-empty client name,
// complete coordinate pairs), scopes every operation to the calling agent,
// and enforces the status machine: draft → signed → completed, with
// cancellation reachable from draft or signed and deletion legal only for
// drafts. Status never moves backward, and signature presence is coupled
// to the signed/completed states.
//
// Service-level errors (e.g., ErrRecordNotFound, ErrInvalidTransition) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pcosta/go-intake-backend/internal/domain"
	"github.com/pcosta/go-intake-backend/internal/repo"
)

// ImpressionRepo defines the repository contract required by
// ImpressionService. Implementations are responsible for persistence of
// the record aggregate; the guarded operations (status update, delete)
// must express their precondition in the query itself so concurrent
// callers cannot both succeed.
type ImpressionRepo interface {
	// CreateImpression inserts a new draft owned by agentID.
	CreateImpression(ctx context.Context, db *gorm.DB, agentID string, rec *domain.FirstImpression) (*domain.FirstImpression, error)

	// GetImpression fetches a record by ID ensuring it belongs to the agent.
	GetImpression(ctx context.Context, db *gorm.DB, id, agentID string) (*domain.FirstImpression, error)

	// CountImpressions returns the total matching the filter.
	CountImpressions(ctx context.Context, db *gorm.DB, agentID string, f repo.ImpressionFilter) (int64, error)

	// ListImpressions returns a page of records matching the filter.
	ListImpressions(ctx context.Context, db *gorm.DB, agentID string, f repo.ImpressionFilter, offset, limit int) ([]domain.FirstImpression, error)

	// UpdateImpression overwrites the mutable fields of a record.
	UpdateImpression(ctx context.Context, db *gorm.DB, id, agentID string, rec *domain.FirstImpression) (*domain.FirstImpression, error)

	// UpdateImpressionStatus atomically applies a guarded status transition.
	UpdateImpressionStatus(ctx context.Context, db *gorm.DB, id, agentID string, from, to domain.Status, extra map[string]any) (*domain.FirstImpression, error)

	// DeleteImpression removes a record while it is still a draft.
	DeleteImpression(ctx context.Context, db *gorm.DB, id, agentID string) error

	// CountByStatus returns the per-status breakdown for an agent.
	CountByStatus(ctx context.Context, db *gorm.DB, agentID string) (map[domain.Status]int64, error)
}

// ImpressionService provides record-level operations: create, hydrate,
// list, update, the signature transition, the workflow transitions
// (complete/cancel), and deletion.
type ImpressionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the record repository used by this service.
	Repo ImpressionRepo

	// MaxPhotos caps the number of photo references accepted per record.
	MaxPhotos int

	// Now is the clock used for signature timestamps; overridable in tests.
	Now func() time.Time
}

// NewImpressionService constructs an ImpressionService with sane defaults.
func NewImpressionService(db *gorm.DB, r ImpressionRepo) *ImpressionService {
	return &ImpressionService{
		DB:        db,
		Repo:      r,
		MaxPhotos: 30,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a new draft owned by agentID. Server-assigned fields in
// the payload (id, owner, status, signature, timestamps) are discarded by
// the repository; validation failures are returned as sentinel errors.
func (s *ImpressionService) Create(ctx context.Context, agentID string, rec *domain.FirstImpression) (*domain.FirstImpression, error) {
	if err := s.validate(rec); err != nil {
		return nil, err
	}
	rec.ClientName = strings.TrimSpace(rec.ClientName)
	return s.Repo.CreateImpression(ctx, s.DB, agentID, rec)
}

// Get fetches a single record for edit-mode hydration.
func (s *ImpressionService) Get(ctx context.Context, agentID, id string) (*domain.FirstImpression, error) {
	rec, err := s.Repo.GetImpression(ctx, s.DB, id, agentID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

// List returns a page of the agent's records plus the total count for the
// filter. Negative skip and non-positive limit fall back to defaults.
// Every call produces a fresh snapshot; no cursor state is kept.
func (s *ImpressionService) List(ctx context.Context, agentID string, f repo.ImpressionFilter, skip, limit int) ([]domain.FirstImpression, int64, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 20
	}

	total, err := s.Repo.CountImpressions(ctx, s.DB, agentID, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.FirstImpression{}, 0, nil
	}

	items, err := s.Repo.ListImpressions(ctx, s.DB, agentID, f, skip, limit)
	return items, total, err
}

// Update overwrites the mutable fields of a draft. Records that have left
// the draft state reject the update with ErrNotDraft — edit mode is only
// reachable for drafts, and a signed record's content is frozen under its
// signature.
func (s *ImpressionService) Update(ctx context.Context, agentID, id string, rec *domain.FirstImpression) (*domain.FirstImpression, error) {
	if err := s.validate(rec); err != nil {
		return nil, err
	}
	cur, err := s.Get(ctx, agentID, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != domain.StatusDraft {
		return nil, ErrNotDraft
	}
	rec.ClientName = strings.TrimSpace(rec.ClientName)
	upd, err := s.Repo.UpdateImpression(ctx, s.DB, id, agentID, rec)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	return upd, err
}

// AttachSignature performs the draft → signed transition, storing the
// encoded signature image and the signing timestamp atomically with the
// status change. An empty payload is rejected before any write. Signing a
// record that is not currently a draft yields ErrInvalidTransition.
func (s *ImpressionService) AttachSignature(ctx context.Context, agentID, id, imagePayload string) (*domain.FirstImpression, error) {
	if strings.TrimSpace(imagePayload) == "" {
		return nil, ErrEmptySignature
	}
	return s.transition(ctx, agentID, id, domain.StatusSigned, map[string]any{
		"signature_image": imagePayload,
		"signed_at":       s.Now(),
	})
}

// Complete performs the signed → completed transition. Driven by the
// back-office workflow once the generated document has been delivered.
func (s *ImpressionService) Complete(ctx context.Context, agentID, id string) (*domain.FirstImpression, error) {
	return s.transition(ctx, agentID, id, domain.StatusCompleted, nil)
}

// Cancel abandons a record from draft or signed. A signature is only
// ever present on signed/completed records, so cancelling a signed one
// discards its signature in the same guarded update as the status
// change; a cancelled record must never read as signed.
func (s *ImpressionService) Cancel(ctx context.Context, agentID, id string) (*domain.FirstImpression, error) {
	return s.transition(ctx, agentID, id, domain.StatusCancelled, map[string]any{
		"signature_image": "",
		"signed_at":       nil,
	})
}

// Delete removes a record, which is legal only while it is a draft.
func (s *ImpressionService) Delete(ctx context.Context, agentID, id string) error {
	cur, err := s.Get(ctx, agentID, id)
	if err != nil {
		return err
	}
	if !cur.Status.Deletable() {
		return ErrNotDraft
	}
	err = s.Repo.DeleteImpression(ctx, s.DB, id, agentID)
	if errors.Is(err, repo.ErrNotFound) {
		// The record left the draft state between the read and the delete.
		return ErrNotDraft
	}
	return err
}

// Stats returns the agent's per-status record counts.
func (s *ImpressionService) Stats(ctx context.Context, agentID string) (map[domain.Status]int64, error) {
	return s.Repo.CountByStatus(ctx, s.DB, agentID)
}

// transition moves a record to the target status after checking the
// machine, then applies the guarded update. A guard miss after the check
// means a concurrent transition won the race; that is reported as
// ErrInvalidTransition, never silently ignored.
func (s *ImpressionService) transition(ctx context.Context, agentID, id string, to domain.Status, extra map[string]any) (*domain.FirstImpression, error) {
	cur, err := s.Get(ctx, agentID, id)
	if err != nil {
		return nil, err
	}
	if !cur.Status.CanTransition(to) {
		return nil, ErrInvalidTransition
	}
	rec, err := s.Repo.UpdateImpressionStatus(ctx, s.DB, id, agentID, cur.Status, to, extra)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidTransition
	}
	return rec, err
}

// validate applies the field-level gate shared by create and update.
func (s *ImpressionService) validate(rec *domain.FirstImpression) error {
	if strings.TrimSpace(rec.ClientName) == "" {
		return ErrNameRequired
	}
	if (rec.Latitude == nil) != (rec.Longitude == nil) {
		return ErrPartialLocation
	}
	if s.MaxPhotos > 0 && len(rec.Photos) > s.MaxPhotos {
		return ErrTooManyPhotos
	}
	return nil
}
