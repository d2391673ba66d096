package httputil

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// RetryableError marks an error as transient. Wrap network timeouts and
// 5xx responses in it so that [Retry] attempts the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff is an exponential retry policy. The zero Clock means the real clock.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Clock    clockwork.Clock
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempts are used up. The delay doubles after each failure.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	clock := b.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var lastErr error
	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// Retry executes fn up to attempts times with exponential backoff starting
// at delay. Returns the last error if all attempts fail, or ctx.Err() if
// cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Backoff{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}

// RetryWithBackoff retries with the defaults: 3 attempts, 1s initial delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, defaultAttempts, defaultDelay, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
