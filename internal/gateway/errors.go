package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrSessionExpired signals that the stored tokens could not be refreshed and
// the session has been cleared.
var ErrSessionExpired = errors.New("gateway: session expired")

// NetworkError wraps failures where no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gateway: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError reports a non-2xx response from the API.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("gateway: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("gateway: %s %s: %d %s", e.Method, e.Path, e.Status, body)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
