package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/infra/storage"
)

// HistoryRepo keeps lookup history in process memory.
type HistoryRepo struct {
	entries []domain.LookupEntry
	mu      sync.RWMutex
}

func NewHistoryRepo() *HistoryRepo {
	return &HistoryRepo{}
}

func (r *HistoryRepo) Save(ctx context.Context, entry *domain.LookupEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := *entry
	e.Records = slices.Clone(entry.Records)
	r.entries = append(r.entries, e)
	return nil
}

func (r *HistoryRepo) ListByPlate(
	ctx context.Context,
	plate string,
	limit int,
) ([]domain.LookupEntry, error) {
	limit = storage.NormalizeLimit(limit)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.LookupEntry
	// Entries land when a check finishes, not when it started
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Plate == plate {
			out = append(out, r.entries[i])
		}
	}
	slices.SortStableFunc(out, func(a, b domain.LookupEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *HistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	var deleted int64
	for _, e := range r.entries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	clear(r.entries[len(kept):])
	r.entries = kept
	return deleted, nil
}
