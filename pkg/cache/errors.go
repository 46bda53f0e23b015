package cache

import (
	"context"
	"errors"
	"net"
	"time"
)

// RetryableError marks a backend failure as transient.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked
// with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryableNet marks network errors and deadlines as transient and passes
// everything else through.
func retryableNet(err error) error {
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
		return Retryable(err)
	}
	return err
}

const retryAttempts = 3

// retryBaseDelay doubles after every failed attempt.
var retryBaseDelay = 100 * time.Millisecond

// RetryWithBackoff calls fn until it succeeds, returns a non-retryable error,
// or has failed retryAttempts times. Cancelling ctx stops the wait between
// attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBaseDelay
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
