package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	s, err := NewSigner("secret")
	require.NoError(t, err)

	token, err := s.Sign(7, "sess-1", time.Hour)
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "portfolio", claims.Issuer)
}

func TestParseRejects(t *testing.T) {
	s, err := NewSigner("secret")
	require.NoError(t, err)
	other, err := NewSigner("other")
	require.NoError(t, err)

	foreign, err := other.Sign(1, "s", time.Hour)
	require.NoError(t, err)
	_, err = s.Parse(foreign)
	assert.Error(t, err, "wrong key")

	expired, err := s.Sign(1, "s", -time.Minute)
	require.NoError(t, err)
	_, err = s.Parse(expired)
	assert.ErrorIs(t, err, jwtlib.ErrTokenExpired)

	noSession, err := s.Sign(1, "", time.Hour)
	require.NoError(t, err)
	_, err = s.Parse(noSession)
	assert.Error(t, err)

	_, err = s.Parse("garbage")
	assert.Error(t, err)

	_, err = NewSigner("")
	assert.Error(t, err)
}
