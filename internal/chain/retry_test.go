package chain_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidrisov/payflow-sub001/internal/chain"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	result, err := chain.RetryWithConfig(context.Background(), chain.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	}, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", chain.ErrRetryable
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("permanent")
	attempts := 0
	_, err := chain.RetryWithConfig(context.Background(), chain.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	}, func() (int, error) {
		attempts++
		return 0, permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	t.Parallel()

	attempts := 0
	_, err := chain.RetryWithConfig(context.Background(), chain.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	}, func() (int, error) {
		attempts++
		return 0, chain.ErrRateLimited
	})

	require.ErrorIs(t, err, chain.ErrRateLimited)
	assert.Equal(t, 3, attempts)
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.RetryWithConfig(ctx, chain.RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   50 * time.Millisecond,
		MaxDelay:    time.Second,
	}, func() (int, error) {
		return 0, chain.ErrRetryable
	})

	require.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, chain.IsRetryable(chain.ErrRetryable))
	assert.True(t, chain.IsRetryable(chain.ErrTimeout))
	assert.True(t, chain.IsRetryable(chain.ErrRateLimited))
	assert.True(t, chain.IsRetryable(context.DeadlineExceeded))
	assert.False(t, chain.IsRetryable(nil))
	assert.False(t, chain.IsRetryable(errors.New("boom")))
}

func TestRetryableStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, chain.RetryableStatus(http.StatusTooManyRequests))
	assert.True(t, chain.RetryableStatus(http.StatusBadGateway))
	assert.False(t, chain.RetryableStatus(http.StatusOK))
	assert.False(t, chain.RetryableStatus(http.StatusBadRequest))
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3*time.Second, chain.ParseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), chain.ParseRetryAfter(""))
	assert.Equal(t, time.Duration(0), chain.ParseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), chain.ParseRetryAfter("-1"))
}
