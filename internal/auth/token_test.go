package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", time.Hour)
	token, exp, err := tm.GenerateToken("user-1", domain.RoleStaff)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	identity, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, Identity{UserID: "user-1", Role: domain.RoleStaff}, identity)
}

func TestParseTokenRejects(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := tm.ParseToken("not-a-jwt")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewTokenManager("other", time.Hour)
		token, _, err := other.GenerateToken("user-1", domain.RoleUser)
		require.NoError(t, err)
		_, err = tm.ParseToken(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenManager("secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := past.GenerateToken("user-1", domain.RoleUser)
		require.NoError(t, err)
		_, err = tm.ParseToken(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, _, err := tm.GenerateToken("user-1", domain.Role("ROOT"))
		require.NoError(t, err)
		_, err = tm.ParseToken(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tm.ParseToken(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
