package manatomb

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnauthorized is returned when the backend rejects a request for the
// current session (HTTP 401 or 403).
var ErrUnauthorized = errors.New("manatomb: unauthorized")

// NotFoundError indicates the backend returned HTTP 404 for a resource.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("manatomb: not found: %s", e.Path)
}

// APIError represents a non-success response from the backend that is not a
// 401/403/404. RetryAfter carries the server's Retry-After hint when one was
// sent with a 429.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("manatomb: API request failed with status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
