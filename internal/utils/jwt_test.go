package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "citizen", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	uid, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "citizen", time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken("other-secret", tok.Token)
	assert.Error(t, err)
}

func TestParseAccessToken_Expired(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "citizen", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken("secret", tok.Token)
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tok, err := NewRefreshToken("refresh-secret", 7, 7*24*time.Hour)
	require.NoError(t, err)

	uid, err := ParseRefreshToken("refresh-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
}

func TestParseRefreshToken_RejectsAccessToken(t *testing.T) {
	// An access token signed with the refresh secret still lacks the
	// token_type claim and must not pass as a refresh token.
	tok, err := NewAccessToken("refresh-secret", 7, "citizen", time.Minute)
	require.NoError(t, err)

	_, err = ParseRefreshToken("refresh-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
