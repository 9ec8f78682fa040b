package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// persistWarning is attached to mutation responses when the write-through to
// storage failed. The mutation itself stands for the rest of the session.
const persistWarning = "could not write to storage, changes are visible this session only"

func parseIDParam(c *fiber.Ctx) (int64, error) {
	value := c.Params("id")
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return parsed, nil
}
