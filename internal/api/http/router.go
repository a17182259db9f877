package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
	// EnforceAuth turns the role guards on. Without it every route is open
	// and actors are taken from request bodies.
	EnforceAuth bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Status)
	api.Post("/auth/login", cfg.Users.Login)
	api.Get("/departments", cfg.Users.ListDepartments)
	api.Get("/categories", cfg.Users.ListCategories)
	api.Get("/roles", cfg.Users.ListRoles)

	enforce := cfg.EnforceAuth
	protected := api.Group("", cfg.AuthMiddleware.Handle)
	staff := auth.RequireRole(enforce, handlers.StatusChangeRoles...)
	anyone := auth.RequireRole(enforce)

	protected.Patch("/users/:id/availability", auth.RequireSelf(enforce, "id"), cfg.Users.SetAvailability)

	protected.Get("/tickets", anyone, cfg.Tickets.ListTickets)
	protected.Post("/tickets", anyone, cfg.Tickets.CreateTicket)
	protected.Get("/tickets/:id", anyone, cfg.Tickets.GetTicket)
	protected.Patch("/tickets/:id/status", staff, cfg.Tickets.UpdateStatus)
	protected.Get("/tickets/:id/history", anyone, cfg.Tickets.ListHistory)
	protected.Post("/tickets/:id/time-logs", staff, cfg.Tickets.LogTime)
	protected.Get("/tickets/:id/time-logs", anyone, cfg.Tickets.ListTimeLogs)

	protected.Get("/users", staff, cfg.Users.ListUsers)

	managers := auth.RequireRole(enforce, domain.RoleSupervisor, domain.RoleAdmin)
	protected.Get("/metrics", managers, cfg.Metrics.Summary)
	protected.Get("/metrics/requests", managers, cfg.Metrics.Requests)
}
