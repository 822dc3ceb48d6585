package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-engine/internal/common/errors"
	"proposal-engine/internal/common/logger"
)

// ==========================
// 1. Retry
// ==========================

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	log := logger.NewTestLogger(t)
	calls := 0

	got, err := Retry(context.Background(), log, Policy{MaxRetries: 3, BaseDelay: time.Millisecond}, "test", func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestRetry_TransientErrorIsRetried(t *testing.T) {
	log := logger.NewTestLogger(t)
	calls := 0

	got, err := Retry(context.Background(), log, Policy{MaxRetries: 3, BaseDelay: time.Millisecond}, "test", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.NewServiceOverloadedError("upstream", 503)
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestRetry_FatalErrorSurfacesImmediately(t *testing.T) {
	log := logger.NewTestLogger(t)
	calls := 0
	fatal := errors.NewExtractionMalformedError("bad payload")

	_, err := Retry(context.Background(), log, Policy{MaxRetries: 3, BaseDelay: time.Millisecond}, "test", func(ctx context.Context) (int, error) {
		calls++
		return 0, fatal
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, errors.ErrCodeExtractionMalformed, errors.CodeOf(err))
}

func TestRetry_ExhaustionWrapsLastError(t *testing.T) {
	log := logger.NewTestLogger(t)
	calls := 0

	_, err := Retry(context.Background(), log, Policy{MaxRetries: 2, BaseDelay: time.Millisecond}, "test", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.NewRateLimitedError("slow down")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, errors.ErrCodeRetryExhausted, errors.CodeOf(err))

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Contains(t, stdErr.Details, "slow down")
	assert.False(t, stdErr.Retryable)
}

func TestRetry_BackoffDoublesBetweenAttempts(t *testing.T) {
	log := logger.NewTestLogger(t)
	var stamps []time.Time

	_, err := Retry(context.Background(), log, Policy{MaxRetries: 2, BaseDelay: 20 * time.Millisecond}, "test", func(ctx context.Context) (int, error) {
		stamps = append(stamps, time.Now())
		return 0, errors.NewServiceOverloadedError("upstream", 503)
	})

	require.Error(t, err)
	require.Len(t, stamps, 3)

	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])
	assert.GreaterOrEqual(t, first, 20*time.Millisecond)
	assert.GreaterOrEqual(t, second, 40*time.Millisecond)
}

func TestRetry_CancelledContextStopsWaiting(t *testing.T) {
	log := logger.NewTestLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Retry(ctx, log, Policy{MaxRetries: 5, BaseDelay: time.Hour}, "test", func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.NewServiceOverloadedError("upstream", 503)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, errors.ErrCodeServiceTimeout, errors.CodeOf(err))
}

func TestRetry_InnerDeadlineIsTransient(t *testing.T) {
	log := logger.NewTestLogger(t)
	calls := 0

	got, err := Retry(context.Background(), log, Policy{MaxRetries: 2, BaseDelay: time.Millisecond}, "test", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, context.DeadlineExceeded
		}
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 2, calls)
}

// ==========================
// 2. Bounded Execution
// ==========================

func TestWithTimeout_ReturnsResultInTime(t *testing.T) {
	got, err := WithTimeout(context.Background(), time.Second, "fast", func(ctx context.Context) (string, error) {
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", got)
}

func TestWithTimeout_ExpiryBecomesServiceTimeout(t *testing.T) {
	_, err := WithTimeout(context.Background(), 20*time.Millisecond, "slow", func(ctx context.Context) (string, error) {
		select {
		case <-time.After(time.Second):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeServiceTimeout, errors.CodeOf(err))
}

func TestWithTimeout_OperationErrorPassesThrough(t *testing.T) {
	opErr := errors.NewCatalogUnavailableError(stderrors.New("db down"))

	_, err := WithTimeout(context.Background(), time.Second, "failing", func(ctx context.Context) (int, error) {
		return 0, opErr
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCatalogUnavailable, errors.CodeOf(err))
}

func TestWithTimeoutFallback_SubstitutesOnExpiry(t *testing.T) {
	got, err := WithTimeoutFallback(context.Background(), 20*time.Millisecond, "slow", 99, func(ctx context.Context) (int, error) {
		select {
		case <-time.After(time.Second):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	require.NoError(t, err)
	assert.Equal(t, 99, got)
}

func TestWithTimeoutFallback_FastResultIgnoresFallback(t *testing.T) {
	got, err := WithTimeoutFallback(context.Background(), time.Second, "fast", 99, func(ctx context.Context) (int, error) {
		return 1, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, got)
}
