package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// CatalogHandler serves public reference data and the demo seed.
type CatalogHandler struct {
	catalog *service.CatalogService
	seed    *service.SeedService
	logger  *zap.Logger
}

// NewCatalogHandler constructs handler. seed may be nil when seeding is disabled.
func NewCatalogHandler(catalog *service.CatalogService, seed *service.SeedService, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{catalog: catalog, seed: seed, logger: logger}
}

// Departments GET /api/departments.
func (h *CatalogHandler) Departments(c *fiber.Ctx) error {
	departments, err := h.catalog.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(departments)
}

// Seed POST /api/seed.
func (h *CatalogHandler) Seed(c *fiber.Ctx) error {
	if h.seed == nil {
		return fiber.ErrNotFound
	}
	result, err := h.seed.Seed(c.UserContext())
	if err != nil {
		return err
	}
	h.logger.Info("seed requested", zap.String("ip", c.IP()), zap.Int("users_created", result.UsersCreated))
	return c.JSON(dto.SeedResponse{Message: "Seeded successfully", Result: result})
}
