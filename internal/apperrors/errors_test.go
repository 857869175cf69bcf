package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "the detail", StatusMessage(500, "the detail", "the message"))
	assert.Equal(t, "the message", StatusMessage(500, "", "the message"))
	assert.Equal(t, "Internal Server Error", StatusMessage(500, "", ""))
	assert.Equal(t, "Request failed with status 599", StatusMessage(599, "", ""))
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Op: "GET", URL: "http://localhost/notes/", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "GET http://localhost/notes/")
}

func TestRequestErrorMessage(t *testing.T) {
	err := &RequestError{Status: 503, Message: "down for maintenance"}
	assert.Equal(t, "request failed with status 503: down for maintenance", err.Error())
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrInvalidCredentials, ErrInvalidRefreshToken, ErrSessionExpired, ErrStorageUnavailable, ErrTokenNotFound}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, fmt.Errorf("wrapped: %w", a), b)
			}
		}
	}
}
