package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// DefaultMaxDelay caps a single wait between attempts.
const DefaultMaxDelay = 30 * time.Second

// RetryableError marks a transient failure. After, when set, is the wait
// the server asked for (Retry-After) and replaces the backoff delay once.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// RetryableAfter marks err as transient with a server-requested wait.
func RetryableAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: after}
}

// IsRetryable reports whether err is marked transient.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	Attempts int           // total attempts, at least 1
	Delay    time.Duration // first wait; doubles after each failure
	MaxDelay time.Duration // cap on any single wait; default DefaultMaxDelay
}

// Do runs fn until it succeeds, fails with an error not marked transient,
// or the attempts run out. It returns the last error, or ctx.Err() once ctx
// is done.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	delay := p.Delay

	var last error
	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = fn()
		if last == nil || !IsRetryable(last) {
			return last
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		var re *RetryableError
		if errors.As(last, &re) && re.After > 0 {
			wait = re.After
		}
		wait = min(wait, maxDelay)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, maxDelay)
	}
	return last
}

// Retry is shorthand for Policy{Attempts: attempts, Delay: delay}.Do.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Policy{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}

// RetryAfter parses a Retry-After header given in seconds. Dates and
// missing or malformed values yield zero.
func RetryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
