// internal/upstream/errors.go
package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// maxBodyEcho bounds how much of a failing response body ends up in the error.
const maxBodyEcho = 800

// ErrDecode is returned when a 2xx body is not valid JSON for the target.
var ErrDecode = errors.New("invalid JSON response")

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether another attempt could succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Error names the upstream and endpoint that failed.
type Error struct {
	Err      error
	Upstream string
	URL      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s request to %s failed: %v", e.Upstream, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status from err, or 0 when it was not a status failure.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
