package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/appointment-service/internal/api/http/handlers"
	"github.com/spec-kit/appointment-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Appointments   *handlers.AppointmentsHandler
	Dashboard      *handlers.DashboardHandler
	AdminUsers     *handlers.AdminUsersHandler
	Activity       *handlers.ActivityHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password-reset", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password-reset/confirm", cfg.Users.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireUser())
	authProtected.Post("/password", cfg.Users.ChangePassword)
	authProtected.Get("/me", cfg.Users.Me)

	appointments := app.Group("/appointments", cfg.AuthMiddleware.Handle, auth.RequireUser())
	appointments.Post("/", cfg.Appointments.CreateAppointment)
	appointments.Get("/", cfg.Appointments.ListAppointments)
	appointments.Get("/:id", cfg.Appointments.GetAppointment)
	appointments.Put("/:id", cfg.Appointments.UpdateAppointment)
	appointments.Delete("/:id", cfg.Appointments.CancelAppointment)

	dashboard := app.Group("/dashboard", cfg.AuthMiddleware.Handle, auth.RequireUser())
	dashboard.Get("/statistics", cfg.Dashboard.GetStatistics)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.AdminUsers.ListUsers)
	admin.Post("/users", cfg.AdminUsers.CreateUser)
	admin.Get("/users/:id", cfg.AdminUsers.GetUser)
	admin.Put("/users/:id", cfg.AdminUsers.UpdateUser)
	admin.Get("/activity", cfg.Activity.ListActivity)
}
