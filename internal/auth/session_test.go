package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSessionLifecycle(t *testing.T) {
	now := time.Now()
	session := NewSession()

	require.False(t, session.IsAuthorized(now))
	_, err := session.Token()
	require.ErrorIs(t, err, ErrMissingToken)

	require.NoError(t, session.SetToken(signedToken(t, "user-7", now.Add(time.Hour))))
	require.True(t, session.IsAuthorized(now))
	require.Equal(t, "user-7", session.UserID())

	token, err := session.Token()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session.Clear()
	require.False(t, session.IsAuthorized(now))
	require.Empty(t, session.UserID())
}

func TestExpiredTokenIsNotAuthorized(t *testing.T) {
	now := time.Now()
	session := NewSession()
	require.NoError(t, session.SetToken(signedToken(t, "user-7", now.Add(-time.Minute))))
	require.False(t, session.IsAuthorized(now))
}

func TestParseClaimsRejectsGarbage(t *testing.T) {
	_, err := ParseClaims("")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = ParseClaims("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
