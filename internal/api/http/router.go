package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/http/handlers"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Blacklist      *handlers.BlacklistHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. The authentication middleware runs on
// every route; route groups add the authorization gates they need.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Users.SignUp)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", auth.RequireAuthenticated(), cfg.Users.Logout)

	usersGroup := app.Group("/users")
	usersGroup.Get("/role/:name", cfg.Users.GetRole)
	usersGroup.Get("/", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)
	usersGroup.Get("/me", auth.RequireAuthenticated(), cfg.Users.Me)
	usersGroup.Get("/:id", auth.RequireAuthenticated(), cfg.Users.GetByID)
	usersGroup.Post("/password", auth.RequireAuthenticated(), cfg.Users.ChangePassword)
	usersGroup.Put("/name", auth.RequireAuthenticated(), cfg.Users.ChangeName)
	usersGroup.Delete("/me", auth.RequireAuthenticated(), cfg.Users.Delete)

	adminGroup := app.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	adminGroup.Get("/blacklist", cfg.Blacklist.Size)
	adminGroup.Delete("/blacklist", cfg.Blacklist.Clear)
}
