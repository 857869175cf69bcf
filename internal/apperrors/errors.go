// Package apperrors contains all common errors used by the client.
package apperrors

import (
	"fmt"
	"net/http"
)

var ErrInvalidCredentials = fmt.Errorf("the provided credentials were rejected")
var ErrInvalidRefreshToken = fmt.Errorf("the refresh token was rejected")
var ErrSessionExpired = fmt.Errorf("the session has expired and cannot be renewed")
var ErrStorageUnavailable = fmt.Errorf("the session storage is not available")
var ErrTokenNotFound = fmt.Errorf("the token cannot be found")

// NetworkError indicates that a request never produced a response. The
// wrapped error is whatever the transport reported.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("no response received for %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RequestError indicates a response with a non-2xx status outside the token
// refresh protocol. Message carries the most specific description the
// response offered.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// StatusMessage picks the most specific user-facing message for a failed
// response: the structured detail field, then the generic message field,
// then the status line text, else a synthesized fallback.
func StatusMessage(status int, detail string, message string) string {
	if detail != "" {
		return detail
	}
	if message != "" {
		return message
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("Request failed with status %d", status)
}
