package runner

import (
	"context"
	"time"
)

// FailureLogger logs failed operations.
type FailureLogger interface {
	LogFailure(err error)
}

// RetryPolicy configures retry behavior.
type RetryPolicy struct {
	MaxAttempts int                                        // total attempts including initial try
	Delay       time.Duration                              // fixed delay between retries (used if DelayFunc nil)
	ShouldRetry func(error) bool                           // predicate; if nil, all errors retried
	DelayFunc   func(attempt int, err error) time.Duration // dynamic backoff; attempt is 1-based
}

// retryOperation wraps an Operation with retry logic.
type retryOperation struct {
	inner  Operation
	policy RetryPolicy
}

// WithRetry wraps an Operation with retry capability.
func WithRetry(op Operation, policy RetryPolicy) Operation {
	if policy.MaxAttempts <= 1 {
		return op // no retries needed
	}
	return &retryOperation{
		inner:  op,
		policy: policy,
	}
}

func (r *retryOperation) Do(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = r.inner.Do(ctx)
		if lastErr == nil {
			return nil // success
		}

		// Don't delay after the last attempt.
		if attempt < r.policy.MaxAttempts {
			if r.policy.ShouldRetry != nil && !r.policy.ShouldRetry(lastErr) {
				return lastErr
			}
			var delay time.Duration
			if r.policy.DelayFunc != nil {
				delay = r.policy.DelayFunc(attempt, lastErr)
			} else {
				delay = r.policy.Delay
			}
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}

// loggingOperation wraps an Operation with failure logging.
type loggingOperation struct {
	inner  Operation
	logger FailureLogger
}

// WithLogging wraps an Operation to log failures.
func WithLogging(op Operation, logger FailureLogger) Operation {
	if logger == nil {
		return op
	}
	return &loggingOperation{
		inner:  op,
		logger: logger,
	}
}

func (l *loggingOperation) Do(ctx context.Context) error {
	err := l.inner.Do(ctx)
	if err != nil && l.logger != nil {
		l.logger.LogFailure(err)
	}
	return err
}
