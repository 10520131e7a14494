package reasoner

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrAPIKeyMissing indicates no credential was configured at process start.
// It is fatal: the client constructor returns it and the process should not
// attempt to serve extractions.
var ErrAPIKeyMissing = errors.New("reasoning service API key is not configured")

// UpstreamError indicates the remote reasoning service rejected the request
// with a non-success status. Callers decide whether to retry: 5xx and 429
// are retryable, other 4xx are not.
type UpstreamError struct {
	Status     int
	Body       string
	RetryAfter time.Duration // populated from Retry-After on 429, otherwise 0
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("reasoning service error (status %d): %s", e.Status, truncate(e.Body, 500))
}

// Retryable reports whether the caller may reasonably retry this failure.
func (e *UpstreamError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// TransportError indicates a network-level failure (timeout, DNS, connection
// reset) before any upstream response was received. Distinct from
// UpstreamError so callers can apply different backoff.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("reasoning service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseRetryAfterHeader parses a Retry-After header value into a duration.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) time.Duration {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
