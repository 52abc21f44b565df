package storage

import (
	"context"
	"time"

	"github.com/vietddude/finecheck/internal/core/domain"
)

// DefaultHistoryLimit bounds ListByPlate when the caller passes no limit.
const DefaultHistoryLimit = 20

// HistoryRepository handles lookup history storage operations
type HistoryRepository interface {
	// Save stores a completed lookup
	Save(ctx context.Context, entry *domain.LookupEntry) error

	// ListByPlate returns the newest lookups for a plate, newest first
	ListByPlate(ctx context.Context, plate string, limit int) ([]domain.LookupEntry, error)

	// DeleteOlderThan removes lookups created before cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NormalizeLimit maps a non-positive limit to DefaultHistoryLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}
