package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func TestRegister(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user, err := h.auth.Register(ctx, RegisterInput{Name: " Jane ", Email: " Jane@Example.com ", Password: "secret-pass"})
	require.NoError(t, err)
	require.Equal(t, "Jane", user.Name)
	require.Equal(t, "jane@example.com", user.Email)
	require.Equal(t, domain.RoleUser, user.Role)
	require.NotEqual(t, "secret-pass", user.PasswordHash)

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		_, err := h.auth.Register(ctx, RegisterInput{Name: "J", Email: "JANE@example.com", Password: "secret-pass"})
		require.True(t, apperrors.HasCode(err, apperrors.CodeConflict), err)
	})

	invalid := []RegisterInput{
		{Email: "a@b.c", Password: "secret-pass"},
		{Name: "A", Password: "secret-pass"},
		{Name: "A", Email: "a@b.c"},
		{Name: "A", Email: "not-an-email", Password: "secret-pass"},
		{Name: "A", Email: "a@b.c", Password: "short"},
		{Name: "A", Email: "a@b.c", Password: "secret-pass", Role: "ROOT"},
		{Name: "A", Email: "a@b.c", Password: "secret-pass", DepartmentID: ptr("missing")},
	}
	for _, in := range invalid {
		_, err := h.auth.Register(ctx, in)
		require.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "%+v: %v", in, err)
	}

	depts, err := h.catalog.ListDepartments(ctx)
	require.NoError(t, err)
	staff, err := h.auth.Register(ctx, RegisterInput{
		Name: "S", Email: "s@example.com", Password: "secret-pass", Role: domain.RoleStaff, DepartmentID: &depts[0].ID,
	})
	require.NoError(t, err)
	require.Equal(t, depts[0].ID, *staff.DepartmentID)
}

func TestLoginScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.auth.Login(ctx, "demo@gmail.com", "12341234")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "demo@gmail.com", res.User.Email)

	identity, err := h.auth.VerifyToken(res.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, identity.UserID)
	require.Equal(t, domain.RoleUser, identity.Role)

	for _, tc := range []struct{ email, password string }{
		{"demo@gmail.com", "wrong-password"},
		{"nobody@example.com", "12341234"},
		{"demo@gmail.com", ""},
		{"  ", "12341234"},
	} {
		res, err := h.auth.Login(ctx, tc.email, tc.password)
		require.Nil(t, res)
		require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated), err)
		require.Equal(t, "invalid credentials", apperrors.ToDomainError(err).Message)
	}

	_, err = h.auth.VerifyToken("garbage")
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))

	me, err := h.auth.Me(ctx, h.staffP)
	require.NoError(t, err)
	require.Equal(t, domain.RoleStaff, me.Role)
}
