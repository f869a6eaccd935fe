package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// AdminHandler serves the admin dashboard endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// Analytics GET /api/admin/analytics.
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	analytics, err := h.admin.GetAnalytics(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(analytics)
}

// Assign POST /api/admin/assign.
func (h *AdminHandler) Assign(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.admin.AssignComplaint(c.UserContext(), principal, req.ComplaintID, req.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(complaint)
}

// Staff GET /api/staff.
func (h *AdminHandler) Staff(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	staff, err := h.admin.ListStaff(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(staff)
}
