package service

import (
	"context"
	"html"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/markbook-app/markbook-api/internal/dto"
	"github.com/markbook-app/markbook-api/internal/models"
	"github.com/markbook-app/markbook-api/internal/store"
)

// MarkService exposes the mark record use cases shared by the records
// manager and the teacher dashboard. The two flows differ in exactly one
// respect: the teacher flow stamps the student's password on every upsert,
// the manager flow never touches it.
type MarkService struct {
	store           *store.MarkStore
	access          *AccessService
	validator       *validator.Validate
	sanitizer       *bluemonday.Policy
	defaultPassword string
	logger          zerolog.Logger
}

// NewMarkService builds a new mark service.
func NewMarkService(markStore *store.MarkStore, access *AccessService, validate *validator.Validate, defaultPassword string, logger zerolog.Logger) *MarkService {
	return &MarkService{
		store:           markStore,
		access:          access,
		validator:       validate,
		sanitizer:       bluemonday.StrictPolicy(),
		defaultPassword: defaultPassword,
		logger:          logger.With().Str("component", "mark_service").Logger(),
	}
}

// Upsert inserts or updates the record keyed by (student, subject). With
// stampPassword set (the teacher flow) the student's password is rewritten
// to the configured default; without it the stored password is untouched.
func (s *MarkService) Upsert(ctx context.Context, req dto.MarkUpsertRequest, stampPassword bool) (dto.MarkUpsertResponse, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MarkUpsertResponse{}, false, err
	}

	password := ""
	if stampPassword {
		password = s.defaultPassword
	}

	result, err := s.store.Upsert(ctx, s.clean(req.Student), s.clean(req.Subject), req.Mark, password)
	if err != nil {
		return dto.MarkUpsertResponse{}, false, err
	}

	event := s.logger.Info().
		Int64("record_id", result.Record.ID).
		Str("student", result.Record.Student).
		Str("subject", result.Record.Subject)
	if result.Created {
		event.Msg("mark created")
	} else {
		event.Msg("mark updated")
	}

	return dto.MarkUpsertResponse{
		Record:  dto.NewMarkResponse(result.Record),
		Created: result.Created,
	}, result.Persisted, nil
}

// Delete removes the record with the given id and returns it so the caller
// can name what was removed.
func (s *MarkService) Delete(ctx context.Context, id int64) (dto.MarkResponse, bool, error) {
	result, err := s.store.Delete(ctx, id)
	if err != nil {
		return dto.MarkResponse{}, false, err
	}

	s.logger.Info().Int64("record_id", id).Msg("mark deleted")

	return dto.NewMarkResponse(result.Record), result.Persisted, nil
}

// DeleteAll clears the mark collection.
func (s *MarkService) DeleteAll(ctx context.Context) (dto.ClearedResponse, bool) {
	removed, persisted := s.store.DeleteAll(ctx)

	s.logger.Info().Int("removed", removed).Msg("all marks cleared")

	return dto.ClearedResponse{Removed: removed}, persisted
}

// List returns every record sorted by student then subject, with the
// counters and autocomplete values the records page shows. String ordering
// is locale-aware.
func (s *MarkService) List() dto.MarkListResponse {
	records := s.store.List()

	c := collate.New(language.English)
	sort.SliceStable(records, func(i, j int) bool {
		if cmp := c.CompareString(records[i].Student, records[j].Student); cmp != 0 {
			return cmp < 0
		}
		return c.CompareString(records[i].Subject, records[j].Subject) < 0
	})

	out := make([]dto.MarkResponse, 0, len(records))
	for _, record := range records {
		out = append(out, dto.NewMarkResponse(record))
	}

	return dto.MarkListResponse{
		TotalRecords:  len(records),
		TotalStudents: s.store.CountDistinctStudents(),
		Records:       out,
		Students:      s.store.Students(),
		Subjects:      s.store.Subjects(),
	}
}

// Search looks up the single record for (student, subject).
func (s *MarkService) Search(req dto.MarkSearchRequest) (dto.MarkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MarkResponse{}, err
	}

	record, err := s.store.FindOne(strings.TrimSpace(s.clean(req.Student)), strings.TrimSpace(s.clean(req.Subject)))
	if err != nil {
		return dto.MarkResponse{}, err
	}

	return dto.NewMarkResponse(record), nil
}

// StudentSummary authorizes and builds the student's own view: per-subject
// rows sorted by subject, the average across them, and the average's grade
// band. Reachable only with at least one record, so the average is taken
// over a non-empty slice.
func (s *MarkService) StudentSummary(req dto.StudentViewRequest) (dto.StudentSummaryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentSummaryResponse{}, err
	}

	records, err := s.access.AuthorizeStudent(s.clean(req.Student), req.Password)
	if err != nil {
		return dto.StudentSummaryResponse{}, err
	}

	c := collate.New(language.English)
	sort.SliceStable(records, func(i, j int) bool {
		return c.CompareString(records[i].Subject, records[j].Subject) < 0
	})

	rows := make([]dto.SubjectMark, 0, len(records))
	for _, record := range records {
		rows = append(rows, dto.SubjectMark{
			Subject: record.Subject,
			Mark:    record.Mark,
			Grade:   models.GradeFor(float64(record.Mark)),
		})
	}

	average := models.Average(records)

	return dto.StudentSummaryResponse{
		Student: records[0].Student,
		Average: average,
		Grade:   models.GradeFor(average),
		Marks:   rows,
	}, nil
}

// clean strips markup from a user-supplied string and decodes the entity
// escapes the sanitizer emits, so the store holds plain text and a name like
// O'Brien keeps its apostrophe. Every path that writes or compares identity
// fields runs through this same normalization; escaping for display is the
// client's concern.
func (s *MarkService) clean(value string) string {
	return html.UnescapeString(s.sanitizer.Sanitize(value))
}
