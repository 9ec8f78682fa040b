package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/rs/zerolog"

	"github.com/markbook-app/markbook-api/internal/store"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided seed token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// sampleMarks is the demo data set installed into an empty gradebook.
var sampleMarks = []struct {
	student string
	subject string
	mark    int
}{
	{"Ahmed Ali", "Mathematics", 95},
	{"Ahmed Ali", "Physics", 88},
	{"Sara Mohamed", "Mathematics", 92},
	{"Sara Mohamed", "Chemistry", 85},
	{"Omar Hassan", "English", 78},
}

// SeedService installs demo marks into an empty gradebook. It never touches
// a collection that already has records.
type SeedService struct {
	marks   *store.MarkStore
	enabled bool
	token   string
	logger  zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(marks *store.MarkStore, enabled bool, token string, logger zerolog.Logger) *SeedService {
	return &SeedService{
		marks:   marks,
		enabled: enabled,
		token:   token,
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedSampleMarks inserts the sample records and reports how many were
// installed. A non-empty collection is left alone and reports zero.
func (s *SeedService) SeedSampleMarks(ctx context.Context, token string) (int, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if s.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return 0, ErrSeedUnauthorized
	}

	if len(s.marks.List()) > 0 {
		return 0, nil
	}

	installed := 0
	for _, sample := range sampleMarks {
		if _, err := s.marks.Upsert(ctx, sample.student, sample.subject, sample.mark, ""); err != nil {
			return installed, err
		}
		installed++
	}

	s.logger.Info().Int("installed", installed).Msg("sample marks seeded")

	return installed, nil
}
