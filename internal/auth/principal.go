package auth

import "github.com/spec-kit/complaint-service/internal/domain"

// Principal represents the authenticated caller.
type Principal struct {
	ID           string
	Name         string
	Email        string
	Role         domain.Role
	DepartmentID *string
}

// PrincipalFromUser builds a principal from a stored user.
func PrincipalFromUser(user *domain.User) *Principal {
	return &Principal{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
	}
}

// HasRole reports whether the principal holds one of the roles.
func (p *Principal) HasRole(roles ...domain.Role) bool {
	if p == nil {
		return false
	}
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}
