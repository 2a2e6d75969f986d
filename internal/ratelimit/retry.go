package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryConfig controls exponential backoff behavior.
// MaxAttempts counts total invocations (1 = no retry).
type RetryConfig struct {
	InitialBackoff time.Duration
	MaxAttempts    int
	MaxBackoff     time.Duration
}

// WithRetry executes fn with exponential backoff and full jitter, logging
// each retry under the source label (a venue or FX provider name).
// isRetryable decides whether an error warrants another attempt; nil treats
// every error as retryable. Context cancellation aborts immediately.
func WithRetry[T any](
	ctx context.Context,
	source string,
	cfg RetryConfig,
	isRetryable func(error) bool,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	if cfg.MaxAttempts < 1 {
		return zero, fmt.Errorf("RetryConfig.MaxAttempts must be >= 1, got %d", cfg.MaxAttempts)
	}

	ceiling := cfg.InitialBackoff

	for attempt := 1; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				slog.Info("fetch recovered", "attempt", attempt, "source", source)
			}
			return result, nil
		}

		if attempt >= cfg.MaxAttempts || ctx.Err() != nil {
			return zero, err
		}
		if isRetryable != nil && !isRetryable(err) {
			return zero, err
		}

		// Full jitter over a doubling ceiling, capped at MaxBackoff.
		delay := time.Duration(rand.Float64() * float64(ceiling))
		slog.Warn("fetch failed, backing off",
			"attempt", attempt,
			"backoff", delay.Round(time.Millisecond).String(),
			"error", err,
			"source", source,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		ceiling = min(ceiling*2, cfg.MaxBackoff)
	}
}
