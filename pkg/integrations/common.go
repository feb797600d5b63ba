package integrations

import (
	"errors"
	"net/http"
	"time"
)

// DefaultTimeout bounds registry requests so that an unreachable host turns
// into a fallback instead of a hang.
const DefaultTimeout = 5 * time.Second

var (
	// ErrNotFound is returned when a resource doesn't exist on the remote.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrDecode is returned when a response body is not the expected structure.
	ErrDecode = errors.New("malformed response")
)

// NewHTTPClient creates an HTTP client with the given overall timeout.
// A zero timeout uses [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
