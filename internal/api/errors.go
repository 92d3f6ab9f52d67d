package api

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCancelled is returned when a request was superseded by a newer one for
// the same resource, or its caller gave up. It is never shown to users.
var ErrCancelled = errors.New("request cancelled")

// IsCancelled reports whether err stems from cancellation rather than failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d", e.Method, e.URL, e.StatusCode)
}

// IsStatusError reports whether err carries an HTTP status and returns it.
func IsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// DecodeError is returned when a response body has an unexpected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when a contact submission fails validation
// before anything is sent.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid contact submission: %v", e.Fields)
}
