package domain

import "time"

// Role enumerates the access levels a principal can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User is an account that files or handles complaints.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	DepartmentID *string   `json:"departmentId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CanBeAssignee reports whether complaints may be assigned to the user.
func (u *User) CanBeAssignee() bool {
	return u != nil && (u.Role == RoleStaff || u.Role == RoleAdmin)
}

// UserSummary is the public projection of a user embedded in other resources.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
