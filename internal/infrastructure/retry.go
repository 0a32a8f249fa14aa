package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for wrapped outbound calls
const (
	DefaultRetryAttempts = 5
	DefaultRetryDelay    = 5 * time.Second
)

// RateLimitError means the remote side rejected a call for being too
// frequent. RetryAfter is the server's hint and is zero when none was given.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// AsRateLimit extracts a RateLimitError from an error chain
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}

// SleepFunc suspends for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the production SleepFunc
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

// RetryPolicy controls Retry. Only rate-limit failures are retried, always
// with the same fixed Delay.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       SleepFunc
	Logger      zerolog.Logger
}

// DefaultRetryPolicy allows 5 attempts spaced 5 seconds apart
func DefaultRetryPolicy(logger zerolog.Logger) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultRetryAttempts,
		Delay:       DefaultRetryDelay,
		Sleep:       SleepContext,
		Logger:      logger.With().Str("component", "retry").Logger(),
	}
}

// Retry invokes call until it succeeds, fails with a non rate-limit error, or
// MaxAttempts rate-limited attempts have been made. The last error is
// returned when attempts run out.
func Retry[T any](ctx context.Context, p RetryPolicy, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	for attempt := 1; ; attempt++ {
		v, err := call(ctx)
		if err == nil {
			return v, nil
		}

		if _, ok := AsRateLimit(err); !ok {
			p.Logger.Error().Err(err).Msg("call failed")
			return zero, err
		}

		if attempt >= attempts {
			p.Logger.Error().Err(err).Int("attempts", attempt).Msg("rate limited, giving up")
			return zero, err
		}

		p.Logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("delay", p.Delay).
			Msg("rate limited, retrying")

		if serr := sleep(ctx, p.Delay); serr != nil {
			return zero, serr
		}
	}
}
