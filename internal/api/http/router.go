package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/timeclock/internal/api/http/handlers"
	"github.com/spec-kit/timeclock/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Status         *handlers.StatusHandler
	Hours          *handlers.HoursHandler
	Messages       *handlers.MessagesHandler
	Admin          *handlers.AdminHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Users.Signup)
	authGroup.Post("/login", cfg.Users.Login)

	requireUser := cfg.AuthMiddleware.Handle

	users := app.Group("/users", requireUser)
	users.Get("/me", cfg.Users.Me)
	users.Put("/me/desk", cfg.Users.AssignDesk)
	users.Put("/me/avatar", cfg.Users.UploadAvatar)
	users.Get("/:username/avatar", cfg.Users.Avatar)

	status := app.Group("/status", requireUser)
	status.Get("/", cfg.Status.Board)
	status.Post("/:username/:action", auth.RequireSelfOrAdmin("username"), cfg.Status.SetStatus)

	app.Get("/hours/current", requireUser, cfg.Hours.Current)

	timesheets := app.Group("/timesheets", requireUser)
	timesheets.Get("/weekly", cfg.Hours.WeeklyAll)
	timesheets.Get("/weekly/:username", cfg.Hours.WeeklyForUser)

	messages := app.Group("/messages", requireUser)
	messages.Get("/", cfg.Messages.Inbox)
	messages.Post("/", cfg.Messages.Send)
	messages.Get("/:id", cfg.Messages.Read)
	messages.Delete("/:id", cfg.Messages.Delete)
	messages.Post("/:id/restore", cfg.Messages.Restore)

	admin := app.Group("/admin", requireUser, auth.RequireAdmin())
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Delete("/users/:username", cfg.Admin.DeleteUser)
}
