package utils

import (
	"context"
	"time"
)

// -----------------------------------------------------------------------------

// SleepCtx waits for d or until the context is cancelled. It returns false if
// the context was cancelled, so loops can exit at this suspension point.
func SleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
