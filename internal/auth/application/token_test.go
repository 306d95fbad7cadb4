package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30, "ecommerce")

	token, expiresAt, err := tm.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	userID, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 30, "ecommerce").Issue(42)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 30, "ecommerce").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, _, err := NewTokenManager("test-secret", -1, "ecommerce").Issue(42)
	require.NoError(t, err)

	_, err = NewTokenManager("test-secret", -1, "ecommerce").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := NewTokenManager("test-secret", 30, "ecommerce").Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
