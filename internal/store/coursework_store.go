package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/markbook-app/markbook-api/internal/models"
	"github.com/markbook-app/markbook-api/internal/storage"
)

// ErrCourseworkNotFound indicates the referenced coursework does not exist.
var ErrCourseworkNotFound = errors.New("coursework not found")

// CourseworkStore owns the coursework collection. Unlike marks there is no
// uniqueness constraint; duplicate (title, subject) entries are allowed.
// Writes go through to the key-value store after every mutation under the
// same keep-in-memory-on-failure contract as MarkStore.
type CourseworkStore struct {
	mu     sync.Mutex
	kv     storage.KeyValueStore
	logger zerolog.Logger
	items  []models.Coursework
	ids    *idAllocator
}

// NewCourseworkStore loads the persisted collection and builds the store
// around it.
func NewCourseworkStore(ctx context.Context, kv storage.KeyValueStore, logger zerolog.Logger) *CourseworkStore {
	items := storage.LoadCoursework(ctx, kv, logger)

	var seed int64
	for _, item := range items {
		if item.ID > seed {
			seed = item.ID
		}
	}

	return &CourseworkStore{
		kv:     kv,
		logger: logger.With().Str("component", "coursework_store").Logger(),
		items:  items,
		ids:    newIDAllocator(seed),
	}
}

// AddResult reports what an add created.
type AddResult struct {
	Record    models.Coursework
	Persisted bool
}

// Add appends a new coursework entry.
func (s *CourseworkStore) Add(ctx context.Context, teacherName, title, subject, description string, dueDate models.Date, mark int) (AddResult, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"teacher name", &teacherName},
		{"title", &title},
		{"subject", &subject},
		{"description", &description},
	}
	for _, field := range fields {
		*field.value = strings.TrimSpace(*field.value)
		if *field.value == "" {
			return AddResult{}, fmt.Errorf("%w: %s is required", ErrInvalidInput, field.name)
		}
	}

	if dueDate.IsZero() {
		return AddResult{}, fmt.Errorf("%w: due date is required", ErrInvalidInput)
	}
	if mark < 0 {
		return AddResult{}, fmt.Errorf("%w: mark must not be negative", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := models.Coursework{
		ID:          s.ids.next(),
		TeacherName: teacherName,
		Title:       title,
		Subject:     subject,
		Description: description,
		DueDate:     dueDate,
		Mark:        mark,
	}
	s.items = append(s.items, record)

	return AddResult{Record: record, Persisted: s.persist(ctx)}, nil
}

// CourseworkDeleteResult reports what a delete removed.
type CourseworkDeleteResult struct {
	Record    models.Coursework
	Persisted bool
}

// Delete removes the entry with the given id. The collection is unchanged
// when the id is absent.
func (s *CourseworkStore) Delete(ctx context.Context, id int64) (CourseworkDeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			removed := s.items[i]
			s.items = append(s.items[:i], s.items[i+1:]...)

			return CourseworkDeleteResult{Record: removed, Persisted: s.persist(ctx)}, nil
		}
	}

	return CourseworkDeleteResult{}, ErrCourseworkNotFound
}

// DeleteAll clears the collection and returns how many entries were removed.
func (s *CourseworkStore) DeleteAll(ctx context.Context) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.items)
	s.items = s.items[:0]

	return removed, s.persist(ctx)
}

// ListOrderedByDueDate returns a copy of the collection sorted ascending by
// due date. The sort is stable, so entries due the same day keep their
// insertion order.
func (s *CourseworkStore) ListOrderedByDueDate() []models.Coursework {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Coursework, len(s.items))
	copy(out, s.items)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})

	return out
}

func (s *CourseworkStore) persist(ctx context.Context) bool {
	if err := storage.SaveCoursework(ctx, s.kv, s.items); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist coursework, changes are visible this session only")
		return false
	}

	return true
}
