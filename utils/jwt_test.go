package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("u-1", "+237690123456", "patient", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "+237690123456", claims.Telephone)
	assert.Equal(t, "patient", claims.UserType)
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, err := GenerateToken("u-1", "+237690123456", "patient", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(tok)
	assert.Error(t, err)
}

func TestHashTokenStable(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
