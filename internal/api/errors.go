package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionExpired means the refresh token was rejected or missing and the
	// stored tokens have been cleared. The user has to sign in again.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrNoRefreshToken is returned by Refresh when nothing is stored.
	ErrNoRefreshToken = errors.New("no refresh token stored")
)

// Error is a failure reported by the server, either through a non-2xx status
// or an envelope with success=false.
type Error struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

// IsStatus reports whether err carries an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsNotFound reports a 404 from the server.
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }
