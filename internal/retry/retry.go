// Package retry implements a small retry combinator driven by an explicit policy.
package retry

import (
	"context"
	"errors"
	"time"
)

// Decision tells Do how to continue after a failed attempt.
type Decision int

const (
	// Stop ends the loop and returns the error.
	Stop Decision = iota
	// Backoff waits Policy.Backoff(attempt) before the next attempt.
	Backoff
	// Immediately runs the next attempt without waiting.
	Immediately
)

// BackoffFunc returns the wait after the failed zero-based attempt.
type BackoffFunc func(attempt int) time.Duration

// ClassifyFunc decides what to do after the zero-based attempt failed with err.
// It may perform side effects such as refreshing credentials.
type ClassifyFunc func(ctx context.Context, err error, attempt int) Decision

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first one.
	MaxAttempts int
	// Backoff computes waits for Backoff decisions. Defaults to no wait.
	Backoff BackoffFunc
	// Classify defaults to Backoff for every error.
	Classify ClassifyFunc
	// Sleep defaults to a context-aware timer.
	Sleep SleepFunc
}

// ErrInvalidPolicy is returned when MaxAttempts is lower than one.
var ErrInvalidPolicy = errors.New("retry policy max attempts must be >= 1")

// Exponential returns base * 2^attempt.
func Exponential(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		if attempt < 0 {
			attempt = 0
		}

		return base * time.Duration(1<<uint(attempt)) //nolint:gosec
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
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

// Do runs fn until it succeeds, the policy stops it, attempts run out or ctx is done.
// The error of the last attempt is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	if p.MaxAttempts < 1 {
		return ErrInvalidPolicy
	}

	classify := p.Classify
	if classify == nil {
		classify = func(context.Context, error, int) Decision { return Backoff }
	}

	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var err error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return nil
		}

		if attempt == p.MaxAttempts-1 || ctx.Err() != nil {
			return err
		}

		switch classify(ctx, err, attempt) {
		case Stop:
			return err
		case Immediately:
			continue
		case Backoff:
			var wait time.Duration
			if p.Backoff != nil {
				wait = p.Backoff(attempt)
			}

			if serr := sleep(ctx, wait); serr != nil {
				return err
			}
		}
	}

	return err
}
