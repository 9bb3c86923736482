package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned for 401 and 403 responses: the backend
	// session is missing or expired.
	ErrUnauthorized = errors.New("not authenticated with Google Drive")
	// ErrNotFound is returned for 404 responses. On file listings it means
	// no analysis has been run for the directory yet.
	ErrNotFound = errors.New("not found")
	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("backend error")
	// ErrMalformed is returned when a response body cannot be decoded.
	ErrMalformed = errors.New("malformed response")
)

// Error describes a failed backend call.
type Error struct {
	Op         string
	StatusCode int    // 0 for transport failures
	Message    string // detail reported by the backend, if any
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// classify maps a non-2xx status code onto one of the sentinel errors.
func classify(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500:
		return ErrServer
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}

// StatusCode extracts the HTTP status of err, or 0 if it carries none.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
