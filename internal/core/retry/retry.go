// Package retry runs a bounded number of attempts with a pluggable delay between them.
// Exhausting the budget is not an error: callers get ok=false and decide what that means
package retry

import (
	"context"
	"time"

	"k8s.io/utils/clock"
)

// Sleeper waits d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Backoff returns the delay to wait after the given zero-based attempt
type Backoff func(attempt int) time.Duration

// Policy bounds a retry loop
type Policy struct {
	Attempts int
	Backoff  Backoff
	Sleep    Sleeper
}

// Constant waits d between every attempt
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// Exponential doubles base per attempt up to ceiling
func Exponential(base, ceiling time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := base
		for i := 0; i < attempt; i++ {
			d *= 2
			if ceiling > 0 && d >= ceiling {
				return ceiling
			}
		}
		return d
	}
}

// ClockSleeper waits on clk so tests can drive time with a fake clock
func ClockSleeper(clk clock.Clock) Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		if d <= 0 {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(d):
			return nil
		}
	}
}

// Fixed is the common Attempts x Delay policy on the real clock
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{Attempts: attempts, Backoff: Constant(delay)}
}

// Do calls fn up to p.Attempts times. fn reports done=true to stop with a value,
// or a non-nil error to abort. Exhaustion returns the zero value, false, nil
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, bool, error)) (T, bool, error) {
	var zero T
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = Constant(0)
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = ClockSleeper(clock.RealClock{})
	}

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}
		v, done, err := fn(ctx, i)
		if err != nil {
			return zero, false, err
		}
		if done {
			return v, true, nil
		}
		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, backoff(i)); err != nil {
			return zero, false, err
		}
	}
	return zero, false, nil
}
