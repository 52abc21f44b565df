package worker

import (
	"context"
	"log/slog"
	"time"
)

// HistoryPruner deletes lookup history older than a cutoff.
type HistoryPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner deletes old history based on retention policy.
type Pruner struct {
	retention time.Duration
	repo      HistoryPruner
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, repo HistoryPruner) *Pruner {
	return &Pruner{
		retention: retention,
		repo:      repo,
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check every 10% of the retention period, between one minute and one hour
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	cutoff := time.Now().Add(-p.retention)

	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to prune lookup history", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Pruned lookup history", "deleted", deleted, "cutoff", cutoff)
	}
}
