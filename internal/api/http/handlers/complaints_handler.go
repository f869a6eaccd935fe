package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ComplaintsHandler manages complaint endpoints for every role.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Create POST /api/complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.Create(c.UserContext(), principal, req.Input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(complaint)
}

// List GET /api/complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.UserContext(), principal, parseListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// Get GET /api/complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	complaint, err := h.service.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(complaint)
}

// Update PATCH /api/complaints/:id.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.Update(c.UserContext(), principal, c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(complaint)
}

// AddComment POST /api/complaints/:id/comments.
func (h *ComplaintsHandler) AddComment(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), principal, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// AddAttachment POST /api/complaints/:id/attachments.
func (h *ComplaintsHandler) AddAttachment(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	attachment, err := h.service.AddAttachment(c.UserContext(), principal, c.Params("id"), req.Input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(attachment)
}

func parseListQuery(c *fiber.Ctx) service.ListComplaintsInput {
	return service.ListComplaintsInput{
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		CategoryID:   c.Query("categoryId"),
		ReporterID:   c.Query("userId"),
		AssignedToID: c.Query("assignedToId"),
		Search:       c.Query("search"),
		Page:         parseInt(c.Query("page"), 1),
		Limit:        parseInt(c.Query("limit"), 0),
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
