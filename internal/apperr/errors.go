// internal/apperr/errors.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput is a missing or malformed identifier supplied by the caller.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the venue or position cannot be resolved.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable covers network, timeout and non-2xx failures after retries.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Error carries the failing operation next to one of the sentinel kinds.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// InvalidInput builds an ErrInvalidInput with a caller-facing message.
func InvalidInput(op, msg string) error {
	return &Error{Kind: ErrInvalidInput, Op: op, Err: errors.New(msg)}
}

// NotFound builds an ErrNotFound with a caller-facing message.
func NotFound(op, msg string) error {
	return &Error{Kind: ErrNotFound, Op: op, Err: errors.New(msg)}
}

// Upstream wraps err as ErrUpstreamUnavailable. A nil err yields nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != nil {
		return err
	}
	return &Error{Kind: ErrUpstreamUnavailable, Op: op, Err: err}
}

// HTTPStatus maps an error to the status code reported to HTTP callers.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the short human-readable text for an error body.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Err != nil {
		return ae.Err.Error()
	}
	return err.Error()
}
