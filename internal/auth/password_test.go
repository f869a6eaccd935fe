package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("12341234", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "12341234", hash)
	require.NoError(t, ComparePassword(hash, "12341234"))
	require.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)
	require.ErrorIs(t, ComparePassword("", "wrong"), ErrPasswordMismatch)
}

func TestHashPasswordClampsCost(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("password123", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashPasswordRejectsLongInput(t *testing.T) {
	t.Parallel()

	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1), bcrypt.MinCost)
	require.ErrorIs(t, err, ErrPasswordTooLong)
}
