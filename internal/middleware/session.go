package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/markbook-app/markbook-api/internal/service"
	"github.com/markbook-app/markbook-api/internal/utils"
)

// RequireRole guards a route group behind an unlocked dashboard session of
// the given role. Whatever is wrong with the token, the caller only learns
// that the dashboard is locked.
func RequireRole(access *service.AccessService, role service.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "dashboard is locked")
		}

		verified, err := access.Verify(token)
		if err != nil || verified != role {
			return utils.SendError(c, fiber.StatusUnauthorized, "dashboard is locked")
		}

		c.Locals("session_role", string(verified))

		return c.Next()
	}
}

// BearerToken extracts the bearer token from the Authorization header,
// or "" when the header is missing or malformed.
func BearerToken(c *fiber.Ctx) string {
	authorization := c.Get("Authorization")
	if authorization == "" {
		return ""
	}

	const bearer = "Bearer "
	if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
		return ""
	}

	return strings.TrimSpace(authorization[len(bearer):])
}
