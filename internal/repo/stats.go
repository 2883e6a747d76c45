// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// for conditional responses (ETag generation on the list endpoint) and for
// the per-agent intake stats endpoint. Each function is context-aware and
// safe to call from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pcosta/go-intake-backend/internal/domain"
)

// ImpressionsStats returns aggregate metadata for an agent's records: the
// total number of rows and the maximum UpdatedAt timestamp among them.
//
// When the agent has no records, the returned count is 0 and maxUpdatedAt
// is nil.
//
// Return values:
//   - count:        total records for agentID
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func ImpressionsStats(ctx context.Context, db *gorm.DB, agentID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.FirstImpression{}).Where("agent_id = ?", agentID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// CountByStatus returns the number of an agent's records in each lifecycle
// state. States with no records are present in the map with a zero count,
// so callers can render a complete breakdown without nil checks.
func CountByStatus(ctx context.Context, db *gorm.DB, agentID string) (map[domain.Status]int64, error) {
	type row struct {
		Status domain.Status
		N      int64
	}
	var rows []row
	err := db.WithContext(ctx).
		Model(&domain.FirstImpression{}).
		Select("status, COUNT(*) AS n").
		Where("agent_id = ?", agentID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := map[domain.Status]int64{
		domain.StatusDraft:     0,
		domain.StatusSigned:    0,
		domain.StatusCompleted: 0,
		domain.StatusCancelled: 0,
	}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
