package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/metrics"
)

// ResultCache stores successful pipeline results keyed by plate and vehicle type.
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResultCache creates a Redis-backed result cache.
func NewResultCache(client *Client, ttl time.Duration) *ResultCache {
	return &ResultCache{
		rdb: client.rdb,
		ttl: ttl,
	}
}

func resultKey(plate string, vt domain.VehicleType) string {
	return fmt.Sprintf("finecheck:result:%s:%s", plate, vt)
}

// Get returns the cached result, or found=false on a miss.
func (c *ResultCache) Get(
	ctx context.Context,
	plate string,
	vt domain.VehicleType,
) (result domain.PipelineResult, found bool, err error) {
	data, err := c.rdb.Get(ctx, resultKey(plate, vt)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return domain.PipelineResult{}, false, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return domain.PipelineResult{}, false, fmt.Errorf("failed to get cached result: %w", err)
	}

	if err := json.Unmarshal(data, &result); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return domain.PipelineResult{}, false, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return result, true, nil
}

// Set stores a result for the configured TTL.
func (c *ResultCache) Set(
	ctx context.Context,
	plate string,
	vt domain.VehicleType,
	result domain.PipelineResult,
) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := c.rdb.Set(ctx, resultKey(plate, vt), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}
