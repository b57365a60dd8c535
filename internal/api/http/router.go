package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/TahjibNil75/trackIT/internal/api/http/handlers"
	"github.com/TahjibNil75/trackIT/internal/auth"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Users          *handlers.UsersHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/mine", cfg.Tickets.ListMine)
	tickets.Get("/history", cfg.Tickets.History)
	tickets.Delete("/attachments/:id", cfg.Tickets.DeleteAttachment)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Put("/:id/assign", cfg.Tickets.AssignTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	comments := api.Group("/comments", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	comments.Post("/tickets/:ticketID", cfg.Comments.CreateComment)
	comments.Get("/tickets/:ticketID", cfg.Comments.ListComments)
	comments.Put("/:id", cfg.Comments.UpdateComment)
	comments.Delete("/:id", cfg.Comments.DeleteComment)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", auth.RequireAnyRole(), cfg.Users.ListUsers)
	users.Get("/role/:role", auth.RequireAnyRole(), cfg.Users.ListByRole)
	users.Put("/:id/role", auth.RequireRoles(domain.RoleAdmin), cfg.Users.UpdateRole)
	users.Put("/:id/status", auth.RequireRoles(domain.RoleAdmin), cfg.Users.UpdateStatus)

	analytics := api.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequirePrivileged())
	analytics.Get("/dashboard", cfg.Analytics.Dashboard)
}
