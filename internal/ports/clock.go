package ports

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Sleeper pauses cooperatively: the wait ends early when ctx is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type SystemSleeper struct{}

func (SystemSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Waiter covers the long between-cycle pauses so the CLI can swap in a
// user-facing countdown.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// SleeperWaiter adapts a plain Sleeper where no display is wanted.
type SleeperWaiter struct {
	Sleeper Sleeper
}

func (w SleeperWaiter) Wait(ctx context.Context, d time.Duration) error {
	return w.Sleeper.Sleep(ctx, d)
}
