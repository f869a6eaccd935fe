package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Role         string  `json:"role"`
	DepartmentID *string `json:"departmentId"`
}

// Input converts the request to the service input.
func (r RegisterRequest) Input() service.RegisterInput {
	return service.RegisterInput{
		Name:         r.Name,
		Email:        r.Email,
		Password:     r.Password,
		Role:         domain.Role(strings.ToUpper(strings.TrimSpace(r.Role))),
		DepartmentID: r.DepartmentID,
	}
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}
