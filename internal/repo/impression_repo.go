// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// FirstImpression model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Lifecycle rules (which status may move
// where, what is deletable) live in services.ImpressionService; the only
// rule enforced here is done so for atomicity — guarded status updates and
// the draft-only delete are expressed as WHERE clauses so that two racing
// requests cannot both succeed.
//
// Error semantics:
//   - When a record is not found (or the guard clause matched no row),
//     functions return ErrNotFound (alias of gorm.ErrRecordNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pcosta/go-intake-backend/internal/domain"
	"github.com/pcosta/go-intake-backend/internal/search"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ImpressionFilter narrows list and count queries. The zero value
// matches every record owned by the agent.
type ImpressionFilter struct {
	// Status restricts results to a single lifecycle state when non-empty.
	Status domain.Status
	// Search is a free-text term matched against the record's normalized
	// search text (client name, address, cadastral article).
	Search string
}

// CreateImpression inserts a new record owned by agentID. The record ID is
// a randomly generated UUID, CreatedAt is set to UTC, status is forced to
// draft, and the normalized search text is computed from the searchable
// fields. On success the persisted record is returned.
func CreateImpression(ctx context.Context, db *gorm.DB, agentID string, rec *domain.FirstImpression) (*domain.FirstImpression, error) {
	rec.ID = uuid.NewString()
	rec.AgentID = agentID
	rec.Status = domain.StatusDraft
	rec.SignatureImage = ""
	rec.SignedAt = nil
	rec.CreatedAt = time.Now().UTC()
	rec.SearchText = impressionSearchText(rec)
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// GetImpression fetches a single record by its ID and owner. If the record
// does not exist (or belongs to another agent), it returns ErrNotFound.
func GetImpression(ctx context.Context, db *gorm.DB, id, agentID string) (*domain.FirstImpression, error) {
	var rec domain.FirstImpression
	err := db.WithContext(ctx).
		Where("id = ? AND agent_id = ?", id, agentID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountImpressions returns the number of records owned by agentID that
// match the filter. On DB error, it returns the error.
func CountImpressions(ctx context.Context, db *gorm.DB, agentID string, f ImpressionFilter) (int64, error) {
	var total int64
	err := impressionQuery(db.WithContext(ctx), agentID, f).
		Model(&domain.FirstImpression{}).
		Count(&total).Error
	return total, err
}

// ListImpressions returns a page of records owned by agentID matching the
// filter, ordered by creation time descending (most recent first). Offset
// and limit implement skip/limit pagination; each call runs a fresh query,
// so re-invoking with the same filter yields a fresh snapshot.
func ListImpressions(ctx context.Context, db *gorm.DB, agentID string, f ImpressionFilter, offset, limit int) ([]domain.FirstImpression, error) {
	var out []domain.FirstImpression
	q := impressionQuery(db.WithContext(ctx), agentID, f).
		Order("created_at DESC, id DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// UpdateImpression overwrites the mutable fields of a record identified by
// id and owned by agentID, recomputing its search text. Status, signature,
// and ownership columns are never touched here — status changes only go
// through UpdateImpressionStatus. If no row is affected (record missing or
// not owned by agentID), it returns ErrNotFound.
func UpdateImpression(ctx context.Context, db *gorm.DB, id, agentID string, rec *domain.FirstImpression) (*domain.FirstImpression, error) {
	fields := map[string]any{
		"client_name":        rec.ClientName,
		"client_phone":       rec.ClientPhone,
		"client_email":       rec.ClientEmail,
		"client_referred_by": rec.ClientReferredBy,
		"cadastral_article":  rec.CadastralArticle,
		"typology":           rec.Typology,
		"conservation_state": rec.ConservationState,
		"gross_area":         rec.GrossArea,
		"usable_area":        rec.UsableArea,
		"estimated_value":    rec.EstimatedValue,
		"address_text":       rec.AddressText,
		"latitude":           rec.Latitude,
		"longitude":          rec.Longitude,
		"photos":             rec.Photos,
		"observations":       rec.Observations,
		"search_text":        impressionSearchText(rec),
	}
	res := db.WithContext(ctx).
		Model(&domain.FirstImpression{}).
		Where("id = ? AND agent_id = ?", id, agentID).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetImpression(ctx, db, id, agentID)
}

// UpdateImpressionStatus atomically moves a record from status from to
// status to, applying any extra column writes (e.g. signature payload and
// timestamp) in the same statement. The WHERE clause includes the expected
// current status, so a concurrent transition makes the second caller see
// ErrNotFound rather than silently re-applying.
func UpdateImpressionStatus(ctx context.Context, db *gorm.DB, id, agentID string, from, to domain.Status, extra map[string]any) (*domain.FirstImpression, error) {
	fields := map[string]any{"status": to}
	for k, v := range extra {
		fields[k] = v
	}
	res := db.WithContext(ctx).
		Model(&domain.FirstImpression{}).
		Where("id = ? AND agent_id = ? AND status = ?", id, agentID, from).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetImpression(ctx, db, id, agentID)
}

// DeleteImpression soft-deletes a record, but only while it is still a
// draft — the guard is part of the WHERE clause so the check and the
// delete cannot race. Returns ErrNotFound when nothing matched (record
// missing, other owner, or no longer draft); the service layer turns that
// into the right user-facing error by re-reading the record.
func DeleteImpression(ctx context.Context, db *gorm.DB, id, agentID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND agent_id = ? AND status = ?", id, agentID, domain.StatusDraft).
		Delete(&domain.FirstImpression{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// impressionQuery composes the shared WHERE clause for list/count.
func impressionQuery(db *gorm.DB, agentID string, f ImpressionFilter) *gorm.DB {
	q := db.Where("agent_id = ?", agentID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if term := search.Normalize(f.Search); term != "" {
		q = q.Where("search_text LIKE ?", "%"+term+"%")
	}
	return q
}

// impressionSearchText derives the normalized search text for a record.
func impressionSearchText(rec *domain.FirstImpression) string {
	return search.IndexText(rec.ClientName, rec.AddressText, rec.CadastralArticle)
}
