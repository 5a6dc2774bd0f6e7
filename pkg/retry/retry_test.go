package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoparts-tn/orders-api/pkg/logger"
)

var errTransient = errors.New("transient")

func testConfig(maxAttempts int, retryable ...error) *Config {
	return &Config{
		MaxAttempts:     maxAttempts,
		BackoffStrategy: &ConstantBackoff{Interval: time.Millisecond},
		Logger:          logger.Nop(),
		RetryableErrors: retryable,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, testConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return errTransient
	}, testConfig(3))

	require.Error(t, err)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0

	err := Do(context.Background(), func() error {
		calls++
		return permanent
	}, testConfig(5, errTransient))

	require.Error(t, err)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error {
		return errTransient
	}, testConfig(3))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithDiscardInvokedOnFailure(t *testing.T) {
	discarded := false
	err := DoWithDiscard(context.Background(), func() error {
		return errTransient
	}, testConfig(2), func(cause error) error {
		discarded = true
		assert.ErrorIs(t, cause, errTransient)
		return errors.New("parked")
	})

	require.Error(t, err)
	assert.True(t, discarded)
	assert.Equal(t, "parked", err.Error())
}

func TestDoWithDiscardSkippedOnSuccess(t *testing.T) {
	err := DoWithDiscard(context.Background(), func() error {
		return nil
	}, testConfig(2), func(cause error) error {
		t.Fatal("discard should not run on success")
		return nil
	})

	require.NoError(t, err)
}

func TestExponentialBackoffGrowthAndCap(t *testing.T) {
	b := &ExponentialBackoff{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     300 * time.Millisecond,
		Multiplier:      2.0,
	}

	assert.Equal(t, 100*time.Millisecond, b.NextBackoff(1))
	assert.Equal(t, 200*time.Millisecond, b.NextBackoff(2))
	assert.Equal(t, 300*time.Millisecond, b.NextBackoff(3))
	assert.Equal(t, 300*time.Millisecond, b.NextBackoff(10))
}
