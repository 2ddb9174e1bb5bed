package domain

import (
	"errors"
	"fmt"
	"time"
)

// NotFoundError signals that a playlist identifier does not resolve to an
// accessible playlist. Terminal: a job failing with it is never retried.
type NotFoundError struct {
	PlaylistID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("playlist %q not found or not accessible", e.PlaylistID)
}

// RateLimitedError signals upstream throttling or quota exhaustion.
// Transient: the caller may retry up to its attempt limit.
type RateLimitedError struct {
	Backend    string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limited, retry after %s", e.Backend, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limited", e.Backend)
}

// UpstreamError wraps any other transport or parsing failure from a backend.
// Retrieved records how many of the playlist's declared videos were fetched
// before the failure; partial results remain usable.
type UpstreamError struct {
	Backend   string
	Retrieved int
	Err       error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream failure after %d videos: %v", e.Backend, e.Retrieved, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ValidationError signals that no usable row set could be produced at all,
// for example zero videos retrieved or a malformed identifier. Terminal.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// StoreError wraps a job store failure. It threatens every job, so the worker
// loop propagates it to its caller instead of translating it into a job state.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// Retryable reports whether an error class may succeed on a later attempt.
// Rate limiting is transient by definition; upstream failures are fatal for
// the attempt but retryable, and share the same attempt counter.
func Retryable(err error) bool {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return true
	}
	var up *UpstreamError
	return errors.As(err, &up)
}
