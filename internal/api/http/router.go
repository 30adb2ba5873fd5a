package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-portal/internal/api/http/handlers"
	"github.com/spec-kit/request-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Catalog        *handlers.CatalogHandler
	Requests       *handlers.RequestsHandler
	Admin          *handlers.AdminRequestsHandler
	Profile        *handlers.ProfileHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/services", cfg.Catalog.List)

	authed := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	authed.Get("/users/me", cfg.Profile.Me)
	authed.Put("/users/me", cfg.Profile.UpdateMe)

	requests := authed.Group("/requests")
	requests.Post("/", cfg.Requests.Create)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/stream", cfg.Requests.Stream)
	requests.Post("/:id/cancel", cfg.Requests.Cancel)

	admin := authed.Group("/admin/requests", auth.RequireAdmin())
	admin.Get("/", cfg.Admin.List)
	admin.Get("/counts", cfg.Admin.Counts)
	admin.Get("/stream", cfg.Admin.Stream)
	admin.Post("/:id/status", cfg.Admin.UpdateStatus)
}
