package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/markbook-app/markbook-api/internal/dto"
	"github.com/markbook-app/markbook-api/internal/service"
	"github.com/markbook-app/markbook-api/internal/utils"
)

// StudentHandler wires the read-only student dashboard: the gated view of a
// student's own marks and the shared coursework list.
type StudentHandler struct {
	marks      *service.MarkService
	coursework *service.CourseworkService
	logger     zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(marks *service.MarkService, coursework *service.CourseworkService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		marks:      marks,
		coursework: coursework,
		logger:     logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches the student endpoints to the router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Post("/marks", h.viewMarks)
	router.Get("/coursework", h.listCoursework)
}

func (h *StudentHandler) viewMarks(c *fiber.Ctx) error {
	var req dto.StudentViewRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	summary, err := h.marks.StudentSummary(req)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		// Unknown student and wrong password deliberately read the same
		// from the outside.
		case errors.Is(err, service.ErrNoSuchStudent), errors.Is(err, service.ErrWrongStudentPassword):
			return utils.SendError(c, fiber.StatusUnauthorized, "name or password is incorrect")
		case errors.As(err, &validationErrors):
			return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
		default:
			h.logger.Error().Err(err).Msg("internal server error")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	return utils.SendSuccess(c, "marks loaded", summary)
}

func (h *StudentHandler) listCoursework(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "coursework retrieved", h.coursework.List())
}
