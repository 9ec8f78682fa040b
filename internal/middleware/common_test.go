package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/markbook-app/markbook-api/internal/middleware"
)

func newPipelineApp(allowOrigins string) *fiber.App {
	app := fiber.New()
	middleware.Register(app, middleware.Config{AllowOrigins: allowOrigins})
	app.Get("/api/v1/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app
}

func TestRegisterAppliesConfiguredCORSOrigin(t *testing.T) {
	app := newPipelineApp("https://markbook.example")

	req := httptest.NewRequest("OPTIONS", "/api/v1/health", nil)
	req.Header.Set("Origin", "https://markbook.example")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "https://markbook.example", resp.Header.Get("Access-Control-Allow-Origin"))
	require.NotContains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "X-Seed-Token")
}

func TestRegisterDefaultsToAnyOrigin(t *testing.T) {
	app := newPipelineApp("")

	req := httptest.NewRequest("OPTIONS", "/api/v1/health", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRegisterAssignsCorrelationID(t *testing.T) {
	app := newPipelineApp("")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
}
