// Package embedding defines the embedding client contract plus the retry
// policy shared by its implementations.
package embedding

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrDimensionMismatch reports a response vector whose length differs from
// the agreed dimensionality. It is a per-chunk failure, never retried.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// TransientError marks a failure expected to resolve on retry: network
// errors, rate-limit rejections and server errors. RetryAfter carries an
// explicit wait requested by the service, when present.
type TransientError struct {
	Err         error
	RateLimited bool
	RetryAfter  time.Duration
}

func (e *TransientError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("rate limited: %v", e.Err)
	}
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Policy bounds retries of transient failures: a fixed attempt budget with
// exponentially growing waits, optionally jittered.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultPolicy matches the service defaults: three attempts, waits growing
// from two to ten seconds.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second, Jitter: true}
}

// NoRetry disables retries; useful in tests and for fail-fast callers.
func NoRetry() Policy {
	return Policy{MaxAttempts: 1}
}

// Delay returns the wait before the given retry attempt (0-based count of
// failures so far): BaseDelay doubled per attempt, capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		attempt = 16
	}
	d := p.BaseDelay << uint(attempt)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter && d > 0 {
		d = d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
	}
	return d
}

// ProgressFunc receives a notification after each chunk completes, whether
// it embedded successfully or not.
type ProgressFunc func(completed, total int)
