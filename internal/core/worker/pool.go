package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/vietddude/finecheck/internal/metrics"
)

// Pool caps how many lookups run at once. Each lookup drives network calls
// and an OCR pass, so unbounded fan-in would overload both.
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

// NewPool creates a pool admitting at most size concurrent jobs.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return int(p.size)
}

// Do waits for a free slot and runs fn in the caller's goroutine.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire pool slot: %w", err)
	}
	defer p.sem.Release(1)

	metrics.ChecksInflight.Inc()
	defer metrics.ChecksInflight.Dec()

	return fn(ctx)
}
