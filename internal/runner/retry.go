package runner

import (
	"context"
	"math"
	"time"
)

// RetryPolicy configures retry behavior.
type RetryPolicy struct {
	MaxAttempts int              // total attempts including initial try
	BaseDelay   time.Duration    // delay before the first retry
	Multiplier  float64          // growth factor per retry; values <= 0 mean a fixed delay
	MaxDelay    time.Duration    // upper bound for a single delay (0 means no cap)
	ShouldRetry func(error) bool // predicate; if nil, all errors retried
	// OnRetry is called after a failed attempt that will be retried; attempt is 1-based.
	OnRetry func(attempt int, err error, delay time.Duration)
	// Sleep waits between attempts; optional injection for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy is the network policy: three attempts in total, waiting
// 0.5s and then 1s between them. A third gap would be 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2,
	}
}

// Delay returns the wait before retry number attempt (1-based):
// BaseDelay * Multiplier^(attempt-1), capped by MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 1
	}
	d := float64(p.BaseDelay) * math.Pow(mult, float64(attempt-1))
	if d > math.MaxInt64 {
		d = math.MaxInt64
	}
	delay := time.Duration(d)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Retry calls fn until it succeeds, the policy gives up, or ctx is done.
// There is no delay after the final attempt. The last error is returned on failure.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		// Don't delay after the last attempt.
		if attempt == attempts {
			break
		}
		if p.ShouldRetry != nil && !p.ShouldRetry(err) {
			return zero, err
		}
		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		if delay > 0 {
			sleep := p.Sleep
			if sleep == nil {
				sleep = sleepContext
			}
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
		}
	}
	return zero, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
