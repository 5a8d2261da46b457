package wikivault

import (
	"context"
	"time"
)

// BackoffDelay returns the exponential backoff delay before retry attempt n:
// base, 2*base, 4*base, and so on.
func BackoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return base << uint(attempt)
}

// SleepContext waits for d or until the context is canceled, whichever comes
// first. Fetchers inject it as their sleep function so tests can substitute
// an instant clock.
func SleepContext(ctx context.Context, d time.Duration) error {
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

// SleepFunc is the signature of an injectable context-aware sleep.
type SleepFunc func(ctx context.Context, d time.Duration) error
