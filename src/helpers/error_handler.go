package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto-tracker/src/logger"
)

// -----------------------------------------------------------------------------
// Error Taxonomy
// -----------------------------------------------------------------------------

var (
	// ErrInvalidInput marks malformed queries, ids or date ranges. Not retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransport marks 5xx responses, malformed HTTP envelopes and dial
	// failures. Retried with backoff at the network layer.
	ErrTransport = errors.New("transport error")

	// ErrNotFound marks a missing resource. Not retried.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited marks a 429 response. Retried with a longer backoff.
	ErrRateLimited = errors.New("rate limited")

	// ErrDecode marks a payload that did not match the expected shape. Not retried.
	ErrDecode = errors.New("decode error")

	// ErrNoData marks a parse that succeeded but yielded zero usable records.
	// Callers where emptiness is meaningful treat it as an empty result.
	ErrNoData = errors.New("no data")
)

// -----------------------------------------------------------------------------

// CryptoTrackerError wraps a classified error with operation context.
type CryptoTrackerError struct {
	Message string
	Cause   error
}

func (e *CryptoTrackerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CryptoTrackerError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// Wrap attaches operation context to a classified error.
func Wrap(message string, cause error) error {
	return &CryptoTrackerError{Message: message, Cause: cause}
}

// -----------------------------------------------------------------------------

// IsRecoverable reports whether an error class may be retried.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrRateLimited)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff executes fn up to maxAttempts times with exponential
// backoff between attempts. Unrecoverable errors abort immediately.
// Rate-limited errors wait longer, capped by rateLimitMax. The wait is
// interruptible: a cancelled context returns ctx.Err() without another attempt.
func RetryWithBackoff(
	ctx context.Context,
	operation string,
	maxAttempts int,
	baseDelay time.Duration,
	rateLimitMax time.Duration,
	log *logger.Logger,
	fn func() error,
) error {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsRecoverable(err) || attempt == maxAttempts-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		if errors.Is(err, ErrRateLimited) {
			delay = delay * 10
			if delay > rateLimitMax {
				delay = rateLimitMax
			}
		}

		log.Warning("%s failed (attempt %d/%d): %v. Retrying in %v", operation, attempt+1, maxAttempts, err, delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
