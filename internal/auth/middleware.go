package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticator validates bearer tokens and loads principals.
type Authenticator struct {
	tokens *TokenManager
	users  UserLookup
}

// NewAuthenticator constructs the authenticator.
func NewAuthenticator(tokens *TokenManager, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Resolve verifies the token and returns the principal it identifies. The
// role recorded in the token must still match the stored account.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*Principal, error) {
	identity, err := a.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	user, err := a.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	if user.Role != identity.Role {
		return nil, apperrors.NewUnauthorized("stale token")
	}
	return PrincipalFromUser(user), nil
}

// Handle enforces authentication for protected routes.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthorized("missing or malformed authorization header")
	}
	principal, err := a.Resolve(c.UserContext(), token)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil
}

// MustPrincipal returns the principal or an authentication error.
func MustPrincipal(c *fiber.Ctx) (*Principal, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}
