package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// ErrVenueNotSupported indicates a venue kind without a registered adapter
var ErrVenueNotSupported = errors.New("venue not supported")

// TransientError marks a failure that is expected to succeed on retry:
// timeouts, connection resets, throttling, upstream 5xx. RetryAfter carries
// the venue's requested wait when it sent one.
type TransientError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *TransientError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("transient: %v (retry after %s)", e.Err, e.RetryAfter)
	}
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// AuthError marks a credential failure (401/403, expired or revoked keys).
// Retrying cannot help; the integration needs user attention.
type AuthError struct {
	Venue VenueKind
	Err   error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Venue, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError wraps err as an authentication failure for the venue
func NewAuthError(venue VenueKind, err error) *AuthError {
	return &AuthError{Venue: venue, Err: err}
}

// HTTPStatusError carries a non-2xx response that was not retried
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.Status, e.Body)
}

// IsTransient reports whether err should be retried: explicit TransientError
// wrappers, network timeouts, refused/reset connections, context deadline.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

// IsAuth reports whether err is a credential failure
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// RetryAfter extracts the venue-requested wait from a transient error chain,
// zero when none was sent.
func RetryAfter(err error) time.Duration {
	var transient *TransientError
	if errors.As(err, &transient) {
		return transient.RetryAfter
	}
	return 0
}

// TransientHTTPStatus reports whether an HTTP status code should be treated
// as transient: throttling and upstream server errors.
func TransientHTTPStatus(status int) bool {
	return status == 429 || status >= 500
}

// AuthHTTPStatus reports whether an HTTP status code indicates a credential failure
func AuthHTTPStatus(status int) bool {
	return status == 401 || status == 403
}
