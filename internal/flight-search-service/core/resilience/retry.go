package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrDownstreamUnavailable wraps the last error once every attempt failed.
var ErrDownstreamUnavailable = errors.New("downstream unavailable")

// maxBackoff caps a single wait between attempts.
const maxBackoff = 10 * time.Second

type RetryPolicy struct {
	MaxAttempts int
	// Backoff is the wait before the second attempt; it doubles after that.
	Backoff        time.Duration
	AttemptTimeout time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		Backoff:        100 * time.Millisecond,
		AttemptTimeout: 2 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	if p.AttemptTimeout <= 0 {
		p.AttemptTimeout = def.AttemptTimeout
	}
	return p
}

// schedule yields the waits between attempts: Backoff, then doubling, no jitter.
func (p RetryPolicy) schedule() *backoff.ExponentialBackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     p.Backoff,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         maxBackoff,
	}
}

// AttemptHook observes each attempt; attempt is 1-based.
type AttemptHook func(attempt int, elapsed time.Duration, err error)

// Retry runs fn until it succeeds or the policy is exhausted. Every attempt
// gets its own deadline and runs in a separate goroutine, so an fn that
// ignores its context is abandoned when the deadline passes. The caller's
// ctx cancels both attempts and backoff waits.
func Retry[T any](ctx context.Context, p RetryPolicy, hook AttemptHook, fn func(context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var zero T
	var lastErr error
	waits := p.schedule()

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(waits.NextBackOff())
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, fmt.Errorf("%w: %w", ErrDownstreamUnavailable, ctx.Err())
			case <-timer.C:
			}
		}

		start := time.Now()
		v, err := runAttempt(ctx, p.AttemptTimeout, fn)
		if hook != nil {
			hook(attempt, time.Since(start), err)
		}
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return zero, fmt.Errorf("%w: %w", ErrDownstreamUnavailable, lastErr)
}

type attemptResult[T any] struct {
	v   T
	err error
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult[T], 1)
	go func() {
		v, err := fn(attemptCtx)
		done <- attemptResult[T]{v: v, err: err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-attemptCtx.Done():
		var zero T
		return zero, fmt.Errorf("attempt timed out after %s: %w", timeout, attemptCtx.Err())
	}
}
