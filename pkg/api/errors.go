package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the dashboard rejects the session token
// even after the single credential re-resolution the client performs.
var ErrUnauthorized = errors.New("dashboard rejected session token")

// StatusError is a non-2xx dashboard response that is not an auth failure.
// It propagates to the caller untouched; the client never retries it.
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dashboard %s returned status %d", e.Path, e.Status)
}
