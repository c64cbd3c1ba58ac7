package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"klokfarm/internal/ports"
)

// RetryPolicy wraps fallible operations with a bounded number of attempts and
// a fixed delay between them. No jitter, no backoff: the cadence is part of
// the bot's request profile.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleeper     ports.Sleeper
	Logger      *zap.Logger
}

// Do runs op up to MaxAttempts times and returns the last error once the
// attempts are exhausted. Each failed attempt is logged with the attempt
// counter and, when accountIndex >= 0, the owning account.
func (p RetryPolicy) Do(ctx context.Context, label string, accountIndex int, op func(context.Context) error) error {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = ports.SystemSleeper{}
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		fields := []zap.Field{
			zap.String("op", label),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		}
		if accountIndex >= 0 {
			fields = append(fields, zap.Int("account", accountIndex+1))
		}
		logger.Warn("operation failed, will retry", fields...)

		if attempt < attempts {
			if sleepErr := sleeper.Sleep(ctx, p.Delay); sleepErr != nil {
				return lastErr
			}
		}
	}

	return lastErr
}

// Retry is the value-returning form of RetryPolicy.Do.
func Retry[T any](ctx context.Context, p RetryPolicy, label string, accountIndex int, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, label, accountIndex, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}
