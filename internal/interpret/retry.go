package interpret

import (
	"context"
	"net/http"
	"time"
)

// RetryPolicy decides how often and how patiently a request is repeated.
type RetryPolicy struct {
	// MaxAttempts counts the first try.
	MaxAttempts int
	// Backoff is the wait after the given failed attempt (1-based).
	Backoff func(attempt int) time.Duration
	// Retryable reports whether a response status is worth another attempt.
	// Transport errors are always retried.
	Retryable func(status int) bool
}

// DefaultRetryPolicy tries three times, waiting 1s then 2s, and only retries
// rate limiting and server errors.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     LinearBackoff(time.Second),
		Retryable:   RetryableStatus,
	}
}

func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt)
	}
}

// RetryableStatus is true for 429 and 5xx.
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) wait(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff(attempt)
}

func (p RetryPolicy) retryable(status int) bool {
	if p.Retryable == nil {
		return RetryableStatus(status)
	}
	return p.Retryable(status)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
