// Package authz decides what an authenticated principal may do with complaints.
//
// Every function is pure: callers load the complaint and pass it in, and the
// package never touches storage.
package authz

import (
	"net/http"
	"strings"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Scope is the mandatory restriction a role places on complaint listings.
type Scope struct {
	ReporterID *string
}

// Unrestricted reports whether the scope lets every complaint through.
func (s Scope) Unrestricted() bool {
	return s.ReporterID == nil
}

// Apply ANDs the scope into a client supplied filter. The scope's reporter
// always replaces whatever reporter the client asked for.
func (s Scope) Apply(filter domain.ComplaintFilter) domain.ComplaintFilter {
	if s.ReporterID != nil {
		id := *s.ReporterID
		filter.ReporterID = &id
	}
	return filter
}

// ListScope returns the listing scope for the principal.
func ListScope(p *auth.Principal) Scope {
	if p.HasRole(domain.RoleStaff, domain.RoleAdmin) {
		return Scope{}
	}
	id := ""
	if p != nil {
		id = p.ID
	}
	return Scope{ReporterID: &id}
}

// CanCreateComplaint reports whether the principal may file complaints.
func CanCreateComplaint(p *auth.Principal) bool {
	return p != nil && p.Role.Valid()
}

// CanRead reports whether the complaint is visible to the principal.
func CanRead(p *auth.Principal, c *domain.Complaint) bool {
	if p == nil || c == nil {
		return false
	}
	switch p.Role {
	case domain.RoleStaff, domain.RoleAdmin:
		return true
	case domain.RoleUser:
		return c.ReporterID == p.ID
	}
	return false
}

// CanComment reports whether the principal may post on the complaint thread.
func CanComment(p *auth.Principal, c *domain.Complaint) bool {
	return CanRead(p, c)
}

// CanSubscribe reports whether the principal may follow the complaint's realtime room.
func CanSubscribe(p *auth.Principal, c *domain.Complaint) bool {
	return CanRead(p, c)
}

var staffFields = map[string]struct{}{
	domain.FieldStatus: {},
}

// CheckUpdate validates that the principal may apply patch to c. Staff may
// only move the status; admins may change any editable field.
func CheckUpdate(p *auth.Principal, c *domain.Complaint, patch domain.ComplaintPatch) error {
	if !CanRead(p, c) {
		return ScopeError()
	}
	switch p.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleStaff:
		var denied []string
		for _, field := range patch.Fields() {
			if _, ok := staffFields[field]; !ok {
				denied = append(denied, field)
			}
		}
		if len(denied) > 0 {
			return apperrors.NewDomainError(apperrors.CodeForbidden,
				"staff may only change status", http.StatusForbidden,
				map[string]any{"fields": strings.Join(denied, ",")})
		}
		return nil
	default:
		return apperrors.NewForbidden("users cannot update complaints")
	}
}

// CanAssign reports whether the principal may assign complaints to staff.
func CanAssign(p *auth.Principal) bool {
	return p.HasRole(domain.RoleAdmin)
}

// CanViewAnalytics reports whether the principal may read dashboard counts.
func CanViewAnalytics(p *auth.Principal) bool {
	return p.HasRole(domain.RoleAdmin)
}

// CanListStaff reports whether the principal may enumerate staff accounts.
func CanListStaff(p *auth.Principal) bool {
	return p.HasRole(domain.RoleAdmin)
}

// ScopeError is returned for complaints outside the principal's scope. It is
// indistinguishable from a missing complaint.
func ScopeError() error {
	return apperrors.NewNotFound("complaint", nil)
}
