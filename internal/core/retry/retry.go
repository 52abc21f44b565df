// Package retry runs an attempt until a validator accepts its result or the
// attempt budget runs out.
//
// Attempt errors never escape: a failed attempt is logged and its value is
// handed to the validator as absent. Exhaustion is reported as ok=false and
// callers turn it into their own typed failure.
package retry

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/vietddude/finecheck/internal/metrics"
)

// Policy defines retry behavior.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Debug       bool
}

// DefaultPolicy matches the lookup service's tolerance: five tries a second apart.
var DefaultPolicy = Policy{
	MaxAttempts: 5,
	Delay:       1 * time.Second,
	Debug:       true,
}

// Attempt produces a value or fails.
type Attempt[T any] func(ctx context.Context) (T, error)

// Validator decides whether a result is accepted. present is false when the
// attempt failed and value is the zero T.
type Validator[T any] func(value T, present bool) bool

// Option customises a single Do call.
type Option func(*options)

type options struct {
	onRetry func(ctx context.Context, attempt int)
	logger  *slog.Logger
}

// WithOnRetry registers a hook run after the delay and before the next attempt.
func WithOnRetry(fn func(ctx context.Context, attempt int)) Option {
	return func(o *options) { o.onRetry = fn }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

const maxResponseLog = 512

// Do runs attempt until validate accepts or policy.MaxAttempts is reached.
// It returns the accepted value and true, or the zero value and false.
func Do[T any](
	ctx context.Context,
	name string,
	attempt Attempt[T],
	validate Validator[T],
	policy Policy,
	opts ...Option,
) (T, bool) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	maxAttempts := max(policy.MaxAttempts, 1)
	var zero T

	for i := 1; i <= maxAttempts; i++ {
		value, err := attempt(ctx)
		present := err == nil
		if !present {
			value = zero
			if policy.Debug {
				o.logger.Error("Attempt failed", "name", name, "attempt", i, "error", err)
			}
		}

		accepted := validate(value, present)
		metrics.RetryAttempts.WithLabelValues(name, resultLabel(accepted, present)).Inc()

		if policy.Debug {
			o.logger.Info("Attempt finished",
				"name", name,
				"attempt", i,
				"max_attempts", maxAttempts,
				"accepted", accepted,
				"internal_error", !present,
				"response", summarize(value, present),
			)
		}

		if accepted {
			return value, true
		}

		if i == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			o.logger.Warn("Retry aborted", "name", name, "attempt", i, "error", ctx.Err())
			return zero, false
		case <-time.After(policy.Delay):
		}

		if o.onRetry != nil {
			o.onRetry(ctx, i)
		}
		if policy.Debug {
			o.logger.Info("Retrying", "name", name, "retry", i, "max_attempts", maxAttempts)
		}
	}

	o.logger.Warn("Retries exhausted", "name", name, "attempts", maxAttempts)
	return zero, false
}

func resultLabel(accepted, present bool) string {
	switch {
	case accepted:
		return "accepted"
	case !present:
		return "error"
	default:
		return "rejected"
	}
}

func summarize(value any, present bool) string {
	if !present {
		return "<absent>"
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "<unprintable>"
		}
		s = string(data)
	}
	if len(s) > maxResponseLog {
		s = s[:maxResponseLog] + "..."
	}
	return s
}
