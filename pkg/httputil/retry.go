package httputil

import (
	"context"
	"errors"
	"time"
)

// MaxDelay caps the wait between attempts, including server-requested waits.
const MaxDelay = 30 * time.Second

// RetryableError marks a transient failure that [Retry] should attempt
// again.
type RetryableError struct {
	Err error

	// After, when positive, replaces the backoff delay before the next
	// attempt (e.g. from a Retry-After header).
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times. Only errors wrapping a
// [RetryableError] are retried; the delay doubles after each failure.
// It returns the last error when all attempts fail, or ctx.Err() when the
// context ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(wait, MaxDelay)):
			delay *= 2
		}
	}
	return err
}

// RetryWithBackoff calls [Retry] with 3 attempts and a one second initial
// delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}
