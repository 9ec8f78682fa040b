package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/markbook-app/markbook-api/internal/models"
	"github.com/markbook-app/markbook-api/internal/storage"
)

var (
	// ErrInvalidInput indicates a mutating operation received malformed
	// input; no mutation has occurred.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMarkNotFound indicates the referenced mark record does not exist.
	ErrMarkNotFound = errors.New("mark record not found")
)

// MarkStore owns the mark collection. It enforces the one-record-per
// (student, subject) invariant, keyed case-insensitively, and writes the
// whole collection through to the key-value store after every mutation.
// A failed write keeps the in-memory collection authoritative for the rest
// of the session; results carry a Persisted flag so callers can say so.
type MarkStore struct {
	mu      sync.Mutex
	kv      storage.KeyValueStore
	logger  zerolog.Logger
	records []models.MarkRecord
	ids     *idAllocator
}

// NewMarkStore loads the persisted collection and builds the store around it.
func NewMarkStore(ctx context.Context, kv storage.KeyValueStore, logger zerolog.Logger) *MarkStore {
	records := storage.LoadMarks(ctx, kv, logger)

	var seed int64
	for _, record := range records {
		if record.ID > seed {
			seed = record.ID
		}
	}

	return &MarkStore{
		kv:      kv,
		logger:  logger.With().Str("component", "mark_store").Logger(),
		records: records,
		ids:     newIDAllocator(seed),
	}
}

// UpsertResult reports what an upsert did.
type UpsertResult struct {
	Record    models.MarkRecord
	Created   bool
	Persisted bool
}

// Upsert inserts a new record or updates the one matching (student, subject)
// case-insensitively. On update the stored display case of student and
// subject is kept from the first write; only the mark changes, plus the
// password when the caller supplies one. An empty password leaves the stored
// password untouched.
func (s *MarkStore) Upsert(ctx context.Context, student, subject string, mark int, password string) (UpsertResult, error) {
	student = strings.TrimSpace(student)
	subject = strings.TrimSpace(subject)

	if student == "" {
		return UpsertResult{}, fmt.Errorf("%w: student name is required", ErrInvalidInput)
	}
	if subject == "" {
		return UpsertResult{}, fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if mark < 0 || mark > 100 {
		return UpsertResult{}, fmt.Errorf("%w: mark must be between 0 and 100", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].Matches(student, subject) {
			s.records[i].Mark = mark
			if password != "" {
				s.records[i].Password = password
			}

			return UpsertResult{Record: s.records[i], Persisted: s.persist(ctx)}, nil
		}
	}

	record := models.MarkRecord{
		ID:       s.ids.next(),
		Student:  student,
		Subject:  subject,
		Mark:     mark,
		Password: password,
	}
	s.records = append(s.records, record)

	return UpsertResult{Record: record, Created: true, Persisted: s.persist(ctx)}, nil
}

// DeleteResult reports what a delete removed.
type DeleteResult struct {
	Record    models.MarkRecord
	Persisted bool
}

// Delete removes the record with the given id. The collection is unchanged
// when the id is absent.
func (s *MarkStore) Delete(ctx context.Context, id int64) (DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			removed := s.records[i]
			s.records = append(s.records[:i], s.records[i+1:]...)

			return DeleteResult{Record: removed, Persisted: s.persist(ctx)}, nil
		}
	}

	return DeleteResult{}, ErrMarkNotFound
}

// DeleteAll clears the collection and returns how many records were removed.
func (s *MarkStore) DeleteAll(ctx context.Context) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.records)
	s.records = s.records[:0]

	return removed, s.persist(ctx)
}

// List returns a copy of every record, unordered as stored.
func (s *MarkStore) List() []models.MarkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.MarkRecord, len(s.records))
	copy(out, s.records)

	return out
}

// FindByStudent returns every record belonging to the named student,
// case-insensitively, unordered as stored.
func (s *MarkStore) FindByStudent(student string) []models.MarkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.MarkRecord, 0)
	for _, record := range s.records {
		if record.BelongsTo(student) {
			out = append(out, record)
		}
	}

	return out
}

// FindOne returns the record for (student, subject), case-insensitive on
// both fields.
func (s *MarkStore) FindOne(student, subject string) (models.MarkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Matches(student, subject) {
			return record, nil
		}
	}

	return models.MarkRecord{}, ErrMarkNotFound
}

// CountDistinctStudents counts unique student names, case-insensitively.
func (s *MarkStore) CountDistinctStudents() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.records))
	for _, record := range s.records {
		seen[strings.ToLower(record.Student)] = struct{}{}
	}

	return len(seen)
}

// Students returns the distinct student display names in insertion order.
func (s *MarkStore) Students() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return distinctFold(s.records, func(r models.MarkRecord) string { return r.Student })
}

// Subjects returns the distinct subject display names in insertion order.
func (s *MarkStore) Subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return distinctFold(s.records, func(r models.MarkRecord) string { return r.Subject })
}

func (s *MarkStore) persist(ctx context.Context) bool {
	if err := storage.SaveMarks(ctx, s.kv, s.records); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist marks, changes are visible this session only")
		return false
	}

	return true
}

func distinctFold(records []models.MarkRecord, field func(models.MarkRecord) string) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))

	for _, record := range records {
		value := field(record)
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}

	return out
}
