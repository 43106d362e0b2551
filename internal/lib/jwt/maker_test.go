package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
)

func TestMaker_AccessTokenRoundtrip(t *testing.T) {
	maker := NewJWTMaker("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)

	token, err := maker.GenerateAccessToken("uid-123", "student@ucsd.edu", "scribe")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", claims.UserUID)
	assert.Equal(t, "student@ucsd.edu", claims.Email)
	assert.Equal(t, "scribe", claims.Role)
}

func TestMaker_RefreshTokenRoundtrip(t *testing.T) {
	maker := NewJWTMaker("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)

	token, err := maker.GenerateRefreshToken("uid-456")
	require.NoError(t, err)

	claims, err := maker.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-456", claims.UserUID)
}

func TestMaker_RefreshTokenNotAcceptedAsAccess(t *testing.T) {
	// Токены подписаны разными секретами: refresh нельзя предъявить как access.
	maker := NewJWTMaker("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)

	refresh, err := maker.GenerateRefreshToken("uid-123")
	require.NoError(t, err)

	_, err = maker.ParseAccessToken(refresh)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}

func TestMaker_ExpiredToken(t *testing.T) {
	maker := NewJWTMaker("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	token, err := maker.GenerateAccessToken("uid-123", "student@ucsd.edu", "viewer")
	require.NoError(t, err)

	_, err = maker.ParseAccessToken(token)
	assert.True(t, errors.Is(err, apperr.ErrTokenExpired))

	refresh, err := maker.GenerateRefreshToken("uid-123")
	require.NoError(t, err)

	_, err = maker.ParseRefreshToken(refresh)
	assert.True(t, errors.Is(err, apperr.ErrTokenExpired))
}

func TestMaker_WrongSecret(t *testing.T) {
	maker := NewJWTMaker("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	other := NewJWTMaker("other-secret", "other-refresh", 15*time.Minute, 168*time.Hour)

	token, err := maker.GenerateAccessToken("uid-123", "student@ucsd.edu", "viewer")
	require.NoError(t, err)

	_, err = other.ParseAccessToken(token)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}
