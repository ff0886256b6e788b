package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoToken is returned when a protected operation is invoked without a
// session token. The check happens before any network I/O.
var ErrNoToken = errors.New("no session token; log in first")

// StatusError is a non-2xx response from the backend, carrying the decoded
// server message when one was present.
type StatusError struct {
	Code    int
	Path    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// IsUnauthorized reports whether err is a 401 from the backend, meaning the
// session token is missing, invalid, or expired server-side.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == 401
}

// IsDuplicate reports whether err is the backend's "already saved" rejection
// of an add: a 400 whose message mentions both words. The server exposes no
// structured error code for this, so a substring match is the best available
// signal.
func IsDuplicate(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 400 {
		return false
	}
	msg := strings.ToLower(se.Message)
	return strings.Contains(msg, "already") && strings.Contains(msg, "saved")
}

// IsTransport reports whether err is a network-level failure rather than a
// backend response: nothing reached the server, so retrying may help.
func IsTransport(err error) bool {
	if err == nil || errors.Is(err, ErrNoToken) {
		return false
	}
	var se *StatusError
	return !errors.As(err, &se)
}
