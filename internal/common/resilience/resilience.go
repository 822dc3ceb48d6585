// Package resilience wraps calls to external services with retry/backoff and
// bounded-time execution. Every external call in the pipeline goes through
// this package; no other component sleeps or retries on its own.
package resilience

import (
	"context"
	stderrors "errors"
	"time"

	"proposal-engine/internal/common/errors"
	"proposal-engine/internal/common/logger"
)

// Operation is a cancellable unit of work returning a value.
type Operation[T any] func(ctx context.Context) (T, error)

// Policy controls the retry schedule. Delay for attempt n (0-based) is
// BaseDelay << n.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultPolicy matches the extraction gateway's contract: at least 2 retries
// with a 1s base delay.
var DefaultPolicy = Policy{MaxRetries: 3, BaseDelay: time.Second}

// Retry runs op, retrying transient failures with exponential backoff.
//
// Failures are classified by errors.IsTransient: retryable StandardErrors and
// context deadline expiries of the inner operation are transient; everything
// else is fatal and surfaces immediately. When the budget is spent the last
// error is wrapped in a RETRY_EXHAUSTED StandardError; there is no fallback
// substitution at this layer.
//
// The loop carries (attempt, delay) state explicitly so the backoff schedule
// is testable and the call stack stays flat.
func Retry[T any](ctx context.Context, log logger.Logger, policy Policy, name string, op Operation[T]) (T, error) {
	var zero T
	var lastErr error

	delay := policy.BaseDelay
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn("retrying operation", map[string]interface{}{
				"operation": name,
				"attempt":   attempt,
				"maxRetries": policy.MaxRetries,
				"delay":     delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, errors.NewServiceTimeoutError(name)
			}
			delay *= 2
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			// Outer budget gone; do not burn further attempts.
			return zero, errors.NewServiceTimeoutError(name)
		}
		if !isRetryable(err) {
			return zero, err
		}
	}

	return zero, errors.NewRetryExhaustedError(policy.MaxRetries+1, lastErr)
}

func isRetryable(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return errors.IsTransient(err)
}

// WithTimeout bounds op to d. On expiry it fails with a SERVICE_TIMEOUT error.
// The operation's context is cancelled so it can stop work early; the result
// of an expired operation is discarded.
func WithTimeout[T any](ctx context.Context, d time.Duration, name string, op Operation[T]) (T, error) {
	return withDeadline(ctx, d, name, op, nil)
}

// WithTimeoutFallback bounds op to d, resolving to fallback on expiry instead
// of failing.
func WithTimeoutFallback[T any](ctx context.Context, d time.Duration, name string, fallback T, op Operation[T]) (T, error) {
	return withDeadline(ctx, d, name, op, &fallback)
}

type outcome[T any] struct {
	value T
	err   error
}

func withDeadline[T any](ctx context.Context, d time.Duration, name string, op Operation[T], fallback *T) (T, error) {
	var zero T

	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		value, err := op(tctx)
		done <- outcome[T]{value: value, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && tctx.Err() == context.DeadlineExceeded {
			if fallback != nil {
				return *fallback, nil
			}
			return zero, errors.NewServiceTimeoutError(name)
		}
		return out.value, out.err
	case <-tctx.Done():
		if tctx.Err() == context.DeadlineExceeded {
			if fallback != nil {
				return *fallback, nil
			}
			return zero, errors.NewServiceTimeoutError(name)
		}
		return zero, tctx.Err()
	}
}
