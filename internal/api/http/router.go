package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/authz"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	// UserLookup resolves callers for role-gated routes.
	UserLookup auth.UserLookup
}

// RegisterRoutes wires HTTP routes. Static ticket paths are registered
// before /:id so they are never captured as an id.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	authenticated := cfg.AuthMiddleware.Handle
	manageUsers := auth.RequireOperation(authz.OpManageUsers, cfg.UserLookup)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", authenticated, cfg.Users.Logout)

	users := api.Group("/users", authenticated)
	users.Get("", manageUsers, cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Delete("/:id", manageUsers, cfg.Users.Delete)

	tickets := api.Group("/tickets", authenticated)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListAll)
	tickets.Get("/user", cfg.Tickets.ListOwn)
	tickets.Get("/status/:status", cfg.Tickets.ListByStatus)
	tickets.Get("/audit-logs", cfg.Tickets.AuditLogs)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
}
