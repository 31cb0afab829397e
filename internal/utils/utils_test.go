package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "admin", 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	claims, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "admin", claims["role"])

	_, err = ParseAccessToken("other", tok.Token)
	assert.Error(t, err)
}

func TestExpiredAccessTokenIsRejected(t *testing.T) {
	tok, err := NewAccessToken("secret", 1, "user", -1)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", tok.Token)
	assert.Error(t, err)
}

func TestRefreshTokenHash(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "nope"))
}

func TestReferenceID(t *testing.T) {
	at := time.Unix(1767225600, 0)
	pattern := regexp.MustCompile(`^CREDIT_1767225600_[0-9A-F]{8}$`)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		ref := NewReferenceID("credit", at)
		require.Regexp(t, pattern, ref)
		require.False(t, seen[ref])
		seen[ref] = true
	}
}
