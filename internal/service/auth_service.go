package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const minPasswordLength = 8

// AuthService coordinates registration and login flows.
type AuthService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	TokenManager   *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	tokens := deps.TokenManager
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	}
	return &AuthService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		tokenMgr:    tokens,
		bcryptCost:  cfg.BcryptCost,
	}
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         domain.Role
	DepartmentID *string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a new account. The role is chosen by the caller and
// defaults to USER.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	missing := []string{}
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("invalid email", nil)
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperrors.NewValidationError("password is too long", map[string]any{"maxBytes": auth.MaxPasswordBytes})
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(role)})
	}

	var departmentID *string
	if in.DepartmentID != nil && strings.TrimSpace(*in.DepartmentID) != "" {
		id := strings.TrimSpace(*in.DepartmentID)
		ok, err := s.departments.Exists(ctx, id)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if !ok {
			return nil, apperrors.NewValidationError("department does not exist", map[string]any{"departmentId": id})
		}
		departmentID = &id
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		DepartmentID: departmentID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates an account. Unknown emails and wrong passwords fail
// with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// VerifyToken returns the identity asserted by a bearer token.
func (s *AuthService) VerifyToken(token string) (auth.Identity, error) {
	identity, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return auth.Identity{}, apperrors.NewUnauthorized("invalid token")
	}
	return identity, nil
}

// Me returns the stored account of the principal.
func (s *AuthService) Me(ctx context.Context, principal *auth.Principal) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
