package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/authz"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// AdminService serves the dashboard: analytics, assignment and the staff directory.
type AdminService struct {
	complaints repository.ComplaintRepository
	users      repository.UserRepository
	workflow   *ComplaintService
}

// AdminDependencies bundles what the admin service needs.
type AdminDependencies struct {
	ComplaintRepo    repository.ComplaintRepository
	UserRepo         repository.UserRepository
	ComplaintService *ComplaintService
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	return &AdminService{
		complaints: deps.ComplaintRepo,
		users:      deps.UserRepo,
		workflow:   deps.ComplaintService,
	}
}

// GetAnalytics returns exact counts at call time.
func (s *AdminService) GetAnalytics(ctx context.Context, principal *auth.Principal) (*domain.Analytics, error) {
	if !authz.CanViewAnalytics(principal) {
		return nil, apperrors.NewForbidden("analytics require admin role")
	}
	counts, err := s.complaints.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byDept, err := s.complaints.CountByDepartment(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if byDept == nil {
		byDept = []domain.DepartmentCount{}
	}
	return &domain.Analytics{Counts: counts, DeptStats: byDept}, nil
}

// AssignComplaint hands the complaint to a staff member and moves it to
// IN_PROGRESS, whatever its previous status.
func (s *AdminService) AssignComplaint(ctx context.Context, principal *auth.Principal, complaintID, staffID string) (*domain.Complaint, error) {
	if !authz.CanAssign(principal) {
		return nil, apperrors.NewForbidden("assignment requires admin role")
	}
	complaintID = strings.TrimSpace(complaintID)
	staffID = strings.TrimSpace(staffID)
	if complaintID == "" || staffID == "" {
		return nil, apperrors.NewValidationError("complaintId and staffId are required", nil)
	}

	current, err := s.workflow.load(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if _, err := s.workflow.assignee(ctx, staffID, apperrors.NewNotFound("staff", nil)); err != nil {
		return nil, err
	}

	if err := s.complaints.Assign(ctx, complaintID, staffID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", nil)
		}
		return nil, apperrors.MapError(err)
	}

	updated, err := s.workflow.load(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if current.Status != updated.Status {
		s.workflow.metrics.StatusChanged(string(current.Status), string(updated.Status))
	}
	s.workflow.publishUpdate(ctx, principal.ID, updated)
	return updated, nil
}

// ListStaff returns accounts with the STAFF role.
func (s *AdminService) ListStaff(ctx context.Context, principal *auth.Principal) ([]domain.User, error) {
	if !authz.CanListStaff(principal) {
		return nil, apperrors.NewForbidden("staff directory requires admin role")
	}
	staff, err := s.users.ListByRole(ctx, domain.RoleStaff)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if staff == nil {
		staff = []domain.User{}
	}
	return staff, nil
}
