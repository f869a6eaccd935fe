package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Parallel()

	t.Run("nil stays nil", func(t *testing.T) {
		require.Nil(t, ToDomainError(nil))
		require.NoError(t, MapError(nil))
	})

	t.Run("wrapped domain errors are unwrapped", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", NewConflict("email already registered", nil))
		de := ToDomainError(err)
		require.Equal(t, CodeConflict, de.Code)
		require.Equal(t, http.StatusConflict, de.HTTPStatus)
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		de := ToDomainError(fmt.Errorf("get: %w", pgx.ErrNoRows))
		require.Equal(t, CodeNotFound, de.Code)
		require.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("unknown errors become internal", func(t *testing.T) {
		cause := errors.New("boom")
		de := ToDomainError(cause)
		require.Equal(t, CodeInternal, de.Code)
		require.ErrorIs(t, de, cause)
		require.Equal(t, "internal server error: boom", de.Error())
	})
}

func TestConstructorsCarryStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), CodeValidation, http.StatusBadRequest},
		{NewUnauthorized("no token"), CodeUnauthenticated, http.StatusUnauthorized},
		{NewForbidden("nope"), CodeForbidden, http.StatusForbidden},
		{NewNotFound("complaint", nil), CodeNotFound, http.StatusNotFound},
		{NewConflict("dup", nil), CodeConflict, http.StatusConflict},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		require.Equal(t, tc.code, de.Code)
		require.Equal(t, tc.status, de.HTTPStatus)
		require.True(t, HasCode(tc.err, tc.code))
	}
	require.Equal(t, "complaint not found", NewNotFound("complaint", nil).Error())
}
