package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenPairIsAuthenticated(t *testing.T) {
	assert.False(t, TokenPair{}.IsAuthenticated())
	assert.False(t, TokenPair{Refresh: "R1"}.IsAuthenticated())
	assert.True(t, TokenPair{Access: "A1"}.IsAuthenticated())
}

func TestTokenPairStringRedactsValues(t *testing.T) {
	pair := TokenPair{Access: "very-secret-access", Refresh: "very-secret-refresh"}
	printed := fmt.Sprintf("%v", pair)
	assert.NotContains(t, printed, "very-secret-access")
	assert.NotContains(t, printed, "very-secret-refresh")
	assert.Contains(t, printed, "redacted")
}
