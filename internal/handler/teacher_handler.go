package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/markbook-app/markbook-api/internal/dto"
	"github.com/markbook-app/markbook-api/internal/middleware"
	"github.com/markbook-app/markbook-api/internal/service"
	"github.com/markbook-app/markbook-api/internal/store"
	"github.com/markbook-app/markbook-api/internal/utils"
)

// TeacherHandler wires the teacher dashboard: unlock/lock, mark upserts
// that stamp the student password, and the coursework lifecycle.
type TeacherHandler struct {
	marks      *service.MarkService
	coursework *service.CourseworkService
	access     *service.AccessService
	logger     zerolog.Logger
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(marks *service.MarkService, coursework *service.CourseworkService, access *service.AccessService, logger zerolog.Logger) *TeacherHandler {
	return &TeacherHandler{
		marks:      marks,
		coursework: coursework,
		access:     access,
		logger:     logger.With().Str("component", "teacher_handler").Logger(),
	}
}

// Register attaches the teacher endpoints to the router group. Everything
// except unlock sits behind the teacher gate.
func (h *TeacherHandler) Register(router fiber.Router, guard fiber.Handler) {
	router.Post("/unlock", h.unlock)
	router.Post("/lock", h.lock)

	marks := router.Group("/marks", guard)
	marks.Get("", h.listMarks)
	marks.Put("", h.upsertMark)
	marks.Delete("/:id", h.deleteMark)
	marks.Delete("", h.clearMarks)

	coursework := router.Group("/coursework", guard)
	coursework.Get("", h.listCoursework)
	coursework.Post("", h.addCoursework)
	coursework.Delete("/:id", h.deleteCoursework)
	coursework.Delete("", h.clearCoursework)
}

func (h *TeacherHandler) unlock(c *fiber.Ctx) error {
	var req dto.UnlockRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	token, expiresAt, err := h.access.Unlock(service.RoleTeacher, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrWrongSecret) {
			return utils.SendError(c, fiber.StatusUnauthorized, "incorrect password")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "dashboard unlocked", dto.UnlockResponse{Token: token, ExpiresAt: expiresAt})
}

func (h *TeacherHandler) lock(c *fiber.Ctx) error {
	if err := h.access.Lock(middleware.BearerToken(c)); err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "dashboard is locked")
	}

	return utils.SendSuccess(c, "dashboard locked", nil)
}

func (h *TeacherHandler) listMarks(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "records retrieved", h.marks.List())
}

func (h *TeacherHandler) upsertMark(c *fiber.Ctx) error {
	var req dto.MarkUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, persisted, err := h.marks.Upsert(c.Context(), req, true)
	if err != nil {
		return h.handleError(c, err)
	}

	message := "mark updated"
	if result.Created {
		message = "mark added"
	}

	if !persisted {
		return utils.SendDegraded(c, message, persistWarning, result)
	}

	return utils.SendSuccess(c, message, result)
}

func (h *TeacherHandler) deleteMark(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	record, persisted, err := h.marks.Delete(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	if !persisted {
		return utils.SendDegraded(c, "mark deleted", persistWarning, record)
	}

	return utils.SendSuccess(c, "mark deleted", record)
}

func (h *TeacherHandler) clearMarks(c *fiber.Ctx) error {
	cleared, persisted := h.marks.DeleteAll(c.Context())

	if !persisted {
		return utils.SendDegraded(c, "all marks cleared", persistWarning, cleared)
	}

	return utils.SendSuccess(c, "all marks cleared", cleared)
}

func (h *TeacherHandler) listCoursework(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "coursework retrieved", h.coursework.List())
}

func (h *TeacherHandler) addCoursework(c *fiber.Ctx) error {
	var req dto.CourseworkCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, persisted, err := h.coursework.Create(c.Context(), req)
	if err != nil {
		return h.handleError(c, err)
	}

	if !persisted {
		return utils.SendDegraded(c, "assignment added", persistWarning, record)
	}

	return utils.SendSuccess(c, "assignment added", record)
}

func (h *TeacherHandler) deleteCoursework(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	record, persisted, err := h.coursework.Delete(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	if !persisted {
		return utils.SendDegraded(c, "assignment deleted", persistWarning, record)
	}

	return utils.SendSuccess(c, "assignment deleted", record)
}

func (h *TeacherHandler) clearCoursework(c *fiber.Ctx) error {
	cleared, persisted := h.coursework.DeleteAll(c.Context())

	if !persisted {
		return utils.SendDegraded(c, "all coursework cleared", persistWarning, cleared)
	}

	return utils.SendSuccess(c, "all coursework cleared", cleared)
}

func (h *TeacherHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, store.ErrMarkNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "mark record not found")
	case errors.Is(err, store.ErrCourseworkNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "coursework not found")
	case errors.Is(err, store.ErrInvalidInput):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *TeacherHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
