package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autoparts-tn/orders-api/pkg/logger"
)

// Func is an operation that can be retried.
type Func func() error

// Config controls the retry loop.
type Config struct {
	MaxAttempts     int
	BackoffStrategy BackoffStrategy
	Logger          logger.Logger
	// RetryableErrors limits which errors are retried. Empty means all.
	RetryableErrors []error
}

// Do runs fn up to cfg.MaxAttempts times, backing off between attempts.
// It stops early on context cancellation or a non-retryable error.
func Do(ctx context.Context, fn Func, cfg *Config) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled by context: %w", ctx.Err())
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		if !isRetryable(err, cfg.RetryableErrors) {
			cfg.Logger.Warn("Non-retryable error encountered, giving up",
				"error", err,
				"attempt", attempt)
			return err
		}

		backoff := cfg.BackoffStrategy.NextBackoff(attempt)

		cfg.Logger.Info("Retrying after error",
			"error", err,
			"attempt", attempt,
			"maxAttempts", cfg.MaxAttempts,
			"backoff", backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled by context during backoff: %w", ctx.Err())
		}
	}

	return fmt.Errorf("all %d retry attempts failed, last error: %w", cfg.MaxAttempts, lastErr)
}

// DiscardFunc is invoked when all attempts are exhausted.
type DiscardFunc func(err error) error

// DoWithDiscard runs fn like Do, then hands a final failure to discard
// instead of returning it directly.
func DoWithDiscard(ctx context.Context, fn Func, cfg *Config, discard DiscardFunc) error {
	err := Do(ctx, fn, cfg)
	if err == nil {
		return nil
	}
	return discard(err)
}

func isRetryable(err error, retryable []error) bool {
	if len(retryable) == 0 {
		return true
	}

	for _, candidate := range retryable {
		if errors.Is(err, candidate) {
			return true
		}
	}

	return false
}
