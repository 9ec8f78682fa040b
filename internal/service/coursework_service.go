package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/markbook-app/markbook-api/internal/dto"
	"github.com/markbook-app/markbook-api/internal/models"
	"github.com/markbook-app/markbook-api/internal/store"
)

// CourseworkService exposes the assignment use cases: teachers issue and
// retract assignments, students read them with a due-status classification
// computed fresh for the day of the request.
type CourseworkService struct {
	store     *store.CourseworkStore
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCourseworkService builds a new coursework service.
func NewCourseworkService(courseworkStore *store.CourseworkStore, validate *validator.Validate, logger zerolog.Logger) *CourseworkService {
	return &CourseworkService{
		store:     courseworkStore,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "coursework_service").Logger(),
		now:       time.Now,
	}
}

// Create issues a new assignment.
func (s *CourseworkService) Create(ctx context.Context, req dto.CourseworkCreateRequest) (dto.CourseworkResponse, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CourseworkResponse{}, false, err
	}

	dueDate, err := models.ParseDate(req.DueDate)
	if err != nil {
		return dto.CourseworkResponse{}, false, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	result, err := s.store.Add(ctx,
		s.clean(req.TeacherName),
		s.clean(req.Title),
		s.clean(req.Subject),
		s.clean(req.Description),
		dueDate,
		req.Mark,
	)
	if err != nil {
		return dto.CourseworkResponse{}, false, err
	}

	s.logger.Info().
		Int64("coursework_id", result.Record.ID).
		Str("title", result.Record.Title).
		Str("due_date", result.Record.DueDate.String()).
		Msg("coursework added")

	return dto.NewCourseworkResponse(result.Record, s.today()), result.Persisted, nil
}

// Delete retracts the assignment with the given id and returns it.
func (s *CourseworkService) Delete(ctx context.Context, id int64) (dto.CourseworkResponse, bool, error) {
	result, err := s.store.Delete(ctx, id)
	if err != nil {
		return dto.CourseworkResponse{}, false, err
	}

	s.logger.Info().Int64("coursework_id", id).Msg("coursework deleted")

	return dto.NewCourseworkResponse(result.Record, s.today()), result.Persisted, nil
}

// DeleteAll clears the coursework collection.
func (s *CourseworkService) DeleteAll(ctx context.Context) (dto.ClearedResponse, bool) {
	removed, persisted := s.store.DeleteAll(ctx)

	s.logger.Info().Int("removed", removed).Msg("all coursework cleared")

	return dto.ClearedResponse{Removed: removed}, persisted
}

// List returns every assignment ascending by due date, each classified
// against the day of the request.
func (s *CourseworkService) List() []dto.CourseworkResponse {
	today := s.today()
	items := s.store.ListOrderedByDueDate()

	out := make([]dto.CourseworkResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.NewCourseworkResponse(item, today))
	}

	return out
}

func (s *CourseworkService) today() models.Date {
	return models.DateOf(s.now())
}

// clean strips markup and decodes the sanitizer's entity escapes so stored
// text stays plain; escaping for display is the client's concern.
func (s *CourseworkService) clean(value string) string {
	return html.UnescapeString(s.sanitizer.Sanitize(value))
}
