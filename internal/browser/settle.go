package browser

import (
	"context"
	"errors"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Settle waits a fixed interval so asynchronous rendering can finish. The
// site gives no readiness signal for most actions, so this is the wait of last resort.
func Settle(ctx context.Context, d time.Duration) error {
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

// IsTimeout reports whether err comes from a bounded wait running out.
func IsTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// TimeoutMs converts d into the millisecond option value playwright expects.
func TimeoutMs(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
