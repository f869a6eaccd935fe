package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Complaints    *handlers.ComplaintsHandler
	Admin         *handlers.AdminHandler
	Catalog       *handlers.CatalogHandler
	Authenticator *auth.Authenticator
	AuthLimiter   *RateLimiter
	Gatherer      prometheus.Gatherer
	SeedEnabled   bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Live)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	if cfg.AuthLimiter != nil {
		authGroup.Post("/register", cfg.AuthLimiter.Handle, cfg.Auth.Register)
		authGroup.Post("/login", cfg.AuthLimiter.Handle, cfg.Auth.Login)
	} else {
		authGroup.Post("/register", cfg.Auth.Register)
		authGroup.Post("/login", cfg.Auth.Login)
	}
	authGroup.Get("/me", cfg.Authenticator.Handle, cfg.Auth.Me)

	api.Get("/departments", cfg.Catalog.Departments)
	if cfg.SeedEnabled {
		api.Post("/seed", cfg.Catalog.Seed)
	}

	complaints := api.Group("/complaints", cfg.Authenticator.Handle)
	complaints.Post("/", cfg.Complaints.Create)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Patch("/:id", cfg.Complaints.Update)
	complaints.Post("/:id/comments", cfg.Complaints.AddComment)
	complaints.Post("/:id/attachments", cfg.Complaints.AddAttachment)

	adminOnly := auth.RequireRole(domain.RoleAdmin)
	admin := api.Group("/admin", cfg.Authenticator.Handle, adminOnly)
	admin.Get("/analytics", cfg.Admin.Analytics)
	admin.Post("/assign", cfg.Admin.Assign)

	api.Get("/staff", cfg.Authenticator.Handle, adminOnly, cfg.Admin.Staff)
}
