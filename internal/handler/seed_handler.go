package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/markbook-app/markbook-api/internal/service"
	"github.com/markbook-app/markbook-api/internal/utils"
)

// SeedHandler exposes the demo-data endpoint.
type SeedHandler struct {
	seed   *service.SeedService
	logger zerolog.Logger
}

// NewSeedHandler constructs the handler.
func NewSeedHandler(seed *service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		seed:   seed,
		logger: logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register attaches the seed endpoint to the router group.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/seed", h.seedMarks)
}

func (h *SeedHandler) seedMarks(c *fiber.Ctx) error {
	installed, err := h.seed.SeedSampleMarks(c.Context(), c.Get("X-Seed-Token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusForbidden, "seeding is disabled")
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid seed token")
		default:
			h.logger.Error().Err(err).Msg("internal server error")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	if installed == 0 {
		return utils.SendSuccess(c, "gradebook not empty, nothing seeded", fiber.Map{"installed": 0})
	}

	return utils.SendSuccess(c, "sample marks seeded", fiber.Map{"installed": installed})
}
