package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/markbook-app/markbook-api/internal/config"
	"github.com/markbook-app/markbook-api/internal/handler"
	"github.com/markbook-app/markbook-api/internal/middleware"
	"github.com/markbook-app/markbook-api/internal/observability"
	"github.com/markbook-app/markbook-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RecordsHandler *handler.RecordsHandler
	TeacherHandler *handler.TeacherHandler
	StudentHandler *handler.StudentHandler
	SeedHandler    *handler.SeedHandler
	Access         *service.AccessService
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Guards are no-ops when no access service is wired, which only
	// happens in tests that exercise the open surface.
	managerGuard := func(c *fiber.Ctx) error { return c.Next() }
	teacherGuard := managerGuard
	if deps.Access != nil {
		managerGuard = middleware.RequireRole(deps.Access, service.RoleManager)
		teacherGuard = middleware.RequireRole(deps.Access, service.RoleTeacher)
	}

	if deps.RecordsHandler != nil {
		deps.RecordsHandler.Register(api.Group("/records"), managerGuard)
	}

	if deps.TeacherHandler != nil {
		deps.TeacherHandler.Register(api.Group("/teacher"), teacherGuard)
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/student"))
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api)
	}
}
