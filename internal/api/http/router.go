package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/request-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Users       *handlers.UsersHandler
	Departments *handlers.DepartmentsHandler
	Requests    *handlers.RequestsHandler
	Metrics     nethttp.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))

	users := app.Group("/users")
	users.Post("/", cfg.Users.Create)
	users.Get("/", cfg.Users.List)

	departments := app.Group("/departments")
	departments.Post("/", cfg.Departments.Create)
	departments.Get("/", cfg.Departments.List)

	requests := app.Group("/service-requests")
	requests.Post("/", cfg.Requests.Create)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Patch("/:id", cfg.Requests.Update)
	requests.Get("/:id/activities", cfg.Requests.ListActivities)
}
