package lookup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/core/worker"
	"github.com/vietddude/finecheck/internal/infra/storage"
	"github.com/vietddude/finecheck/internal/metrics"
)

// ErrHistoryDisabled is returned by History when no repository is configured.
var ErrHistoryDisabled = errors.New("lookup history is disabled")

// Pipeline runs one uncached lookup.
type Pipeline interface {
	Check(ctx context.Context, plate string, vt domain.VehicleType) (domain.PipelineResult, error)
}

// ResultCache stores successful results between lookups.
type ResultCache interface {
	Get(ctx context.Context, plate string, vt domain.VehicleType) (domain.PipelineResult, bool, error)
	Set(ctx context.Context, plate string, vt domain.VehicleType, result domain.PipelineResult) error
}

// Service is the caller-facing entry point used by the API and the CLI. It
// bounds concurrency, serves repeated lookups from cache and records history.
type Service struct {
	pipeline Pipeline
	pool     *worker.Pool
	cache    ResultCache
	history  storage.HistoryRepository
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithCache enables read-through result caching.
func WithCache(c ResultCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithHistory records every completed lookup.
func WithHistory(r storage.HistoryRepository) ServiceOption {
	return func(s *Service) { s.history = r }
}

// NewService creates a lookup service.
func NewService(p Pipeline, pool *worker.Pool, opts ...ServiceOption) *Service {
	if pool == nil {
		pool = worker.NewPool(1)
	}
	s := &Service{pipeline: p, pool: pool}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check looks a plate up. Invalid input is the only error besides a context
// that ended while waiting for a pool slot.
func (s *Service) Check(
	ctx context.Context,
	plate string,
	vt domain.VehicleType,
) (domain.LookupEntry, error) {
	start := time.Now()

	cleaned, vt, err := NormalizeInput(plate, vt)
	if err != nil {
		metrics.ChecksTotal.WithLabelValues("invalid").Inc()
		return domain.LookupEntry{}, err
	}

	entry := domain.LookupEntry{
		ID:          uuid.NewString(),
		Plate:       cleaned,
		VehicleType: vt,
	}

	if result, ok := s.cached(ctx, cleaned, vt); ok {
		entry.Cached = true
		s.finish(ctx, &entry, result, start)
		return entry, nil
	}

	var result domain.PipelineResult
	err = s.pool.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.pipeline.Check(ctx, cleaned, vt)
		return err
	})
	if err != nil {
		metrics.ChecksTotal.WithLabelValues("aborted").Inc()
		return domain.LookupEntry{}, err
	}

	if !result.Error && s.cache != nil {
		if err := s.cache.Set(ctx, cleaned, vt, result); err != nil {
			slog.Warn("Failed to cache lookup result", "plate", cleaned, "error", err)
		}
	}

	s.finish(ctx, &entry, result, start)
	return entry, nil
}

// History lists past lookups for a plate, newest first.
func (s *Service) History(ctx context.Context, plate string, limit int) ([]domain.LookupEntry, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if err := domain.ValidatePlate(plate); err != nil {
		return nil, err
	}
	return s.history.ListByPlate(ctx, domain.CleanPlate(plate), limit)
}

func (s *Service) cached(
	ctx context.Context,
	plate string,
	vt domain.VehicleType,
) (domain.PipelineResult, bool) {
	if s.cache == nil {
		return domain.PipelineResult{}, false
	}
	result, ok, err := s.cache.Get(ctx, plate, vt)
	if err != nil {
		slog.Warn("Failed to read lookup cache", "plate", plate, "error", err)
		return domain.PipelineResult{}, false
	}
	return result, ok
}

func (s *Service) finish(
	ctx context.Context,
	entry *domain.LookupEntry,
	result domain.PipelineResult,
	start time.Time,
) {
	elapsed := time.Since(start)
	entry.Error = result.Error
	entry.Message = result.Message
	entry.Records = result.Records
	entry.DurationMS = elapsed.Milliseconds()
	entry.CreatedAt = start

	metrics.ChecksTotal.WithLabelValues(outcomeLabel(*entry)).Inc()
	metrics.CheckDuration.Observe(elapsed.Seconds())

	slog.Info("Lookup completed",
		"plate", entry.Plate,
		"vehicle_type", entry.VehicleType,
		"error", entry.Error,
		"violations", len(entry.Records),
		"cached", entry.Cached,
		"duration", elapsed,
	)

	if s.history == nil {
		return
	}
	// History survives a caller that has already gone away
	if err := s.history.Save(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("Failed to record lookup history", "plate", entry.Plate, "error", err)
	}
}

func outcomeLabel(e domain.LookupEntry) string {
	switch {
	case e.Cached:
		return "cached"
	case e.Error:
		return "error"
	case len(e.Records) == 0:
		return "clean"
	default:
		return "violations"
	}
}
