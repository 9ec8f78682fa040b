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

// RecordsHandler wires the generic records manager: list and search are
// open, mutations sit behind the manager gate. Upserts through this surface
// never touch student passwords.
type RecordsHandler struct {
	marks  *service.MarkService
	access *service.AccessService
	logger zerolog.Logger
}

// NewRecordsHandler constructs the handler.
func NewRecordsHandler(marks *service.MarkService, access *service.AccessService, logger zerolog.Logger) *RecordsHandler {
	return &RecordsHandler{
		marks:  marks,
		access: access,
		logger: logger.With().Str("component", "records_handler").Logger(),
	}
}

// Register attaches the records endpoints to the router group.
func (h *RecordsHandler) Register(router fiber.Router, guard fiber.Handler) {
	router.Get("", h.list)
	router.Get("/search", h.search)
	router.Post("/unlock", h.unlock)
	router.Post("/lock", h.lock)
	router.Put("", guard, h.upsert)
	router.Delete("/:id", guard, h.delete)
	router.Delete("", guard, h.clear)
}

func (h *RecordsHandler) list(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "records retrieved", h.marks.List())
}

func (h *RecordsHandler) search(c *fiber.Ctx) error {
	req := dto.MarkSearchRequest{
		Student: c.Query("student"),
		Subject: c.Query("subject"),
	}

	record, err := h.marks.Search(req)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "record found", record)
}

func (h *RecordsHandler) unlock(c *fiber.Ctx) error {
	var req dto.UnlockRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	token, expiresAt, err := h.access.Unlock(service.RoleManager, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrWrongSecret) {
			return utils.SendError(c, fiber.StatusUnauthorized, "incorrect password")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "manager unlocked", dto.UnlockResponse{Token: token, ExpiresAt: expiresAt})
}

func (h *RecordsHandler) lock(c *fiber.Ctx) error {
	if err := h.access.Lock(middleware.BearerToken(c)); err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "dashboard is locked")
	}

	return utils.SendSuccess(c, "manager locked", nil)
}

func (h *RecordsHandler) upsert(c *fiber.Ctx) error {
	var req dto.MarkUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, persisted, err := h.marks.Upsert(c.Context(), req, false)
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

func (h *RecordsHandler) delete(c *fiber.Ctx) error {
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

func (h *RecordsHandler) clear(c *fiber.Ctx) error {
	cleared, persisted := h.marks.DeleteAll(c.Context())

	if !persisted {
		return utils.SendDegraded(c, "all records cleared", persistWarning, cleared)
	}

	return utils.SendSuccess(c, "all records cleared", cleared)
}

func (h *RecordsHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, store.ErrMarkNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "mark record not found")
	case errors.Is(err, store.ErrInvalidInput):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *RecordsHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
