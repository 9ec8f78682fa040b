package store_test

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/markbook-app/markbook-api/internal/storage"
	"github.com/markbook-app/markbook-api/internal/store"
)

func newTestKV(t *testing.T) storage.KeyValueStore {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	return storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mini.Addr()}))
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, error) {
	return "", storage.ErrKeyNotFound
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func (failingKV) Close() error { return nil }

func TestMarkStoreUpsertIsKeyedCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	s := store.NewMarkStore(ctx, newTestKV(t), zerolog.Nop())

	first, err := s.Upsert(ctx, "Ann", "Math", 90, "")
	require.NoError(t, err)
	require.True(t, first.Created)
	require.True(t, first.Persisted)

	second, err := s.Upsert(ctx, "ann", "MATH", 75, "")
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.Record.ID, second.Record.ID)
	require.Equal(t, 75, second.Record.Mark)
	// Display case comes from the first write.
	require.Equal(t, "Ann", second.Record.Student)
	require.Equal(t, "Math", second.Record.Subject)

	require.Len(t, s.List(), 1)

	found, err := s.FindOne("ANN", "math")
	require.NoError(t, err)
	require.Equal(t, 75, found.Mark)
}

func TestMarkStoreUpsertValidation(t *testing.T) {
	ctx := context.Background()
	s := store.NewMarkStore(ctx, newTestKV(t), zerolog.Nop())

	cases := []struct {
		student string
		subject string
		mark    int
	}{
		{"", "Math", 50},
		{"   ", "Math", 50},
		{"Ann", "  ", 50},
		{"Ann", "Math", -1},
		{"Ann", "Math", 101},
	}

	for _, tc := range cases {
		_, err := s.Upsert(ctx, tc.student, tc.subject, tc.mark, "")
		require.ErrorIs(t, err, store.ErrInvalidInput)
	}

	// No partial mutation from any of the rejected calls.
	require.Empty(t, s.List())
}

func TestMarkStorePasswordRules(t *testing.T) {
	ctx := context.Background()
	s := store.NewMarkStore(ctx, newTestKV(t), zerolog.Nop())

	created, err := s.Upsert(ctx, "Ann", "Math", 90, "123")
	require.NoError(t, err)
	require.Equal(t, "123", created.Record.Password)

	// Empty password leaves the stored one untouched.
	updated, err := s.Upsert(ctx, "Ann", "Math", 80, "")
	require.NoError(t, err)
	require.Equal(t, "123", updated.Record.Password)

	// A supplied password rewrites it.
	stamped, err := s.Upsert(ctx, "Ann", "Math", 70, "secret")
	require.NoError(t, err)
	require.Equal(t, "secret", stamped.Record.Password)
}

func TestMarkStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := store.NewMarkStore(ctx, newTestKV(t), zerolog.Nop())

	created, err := s.Upsert(ctx, "Ann", "Math", 90, "")
	require.NoError(t, err)

	removed, err := s.Delete(ctx, created.Record.ID)
	require.NoError(t, err)
	require.Equal(t, created.Record.ID, removed.Record.ID)
	require.Empty(t, s.List())

	_, err = s.Delete(ctx, created.Record.ID)
	require.ErrorIs(t, err, store.ErrMarkNotFound)
	require.Empty(t, s.List())
}

func TestMarkStoreDeleteAbsentLeavesCollection(t *testing.T) {
	ctx := context.Background()
	s := store.NewMarkStore(ctx, newTestKV(t), zerolog.Nop())

	_, err := s.Upsert(ctx, "Ann", "Math", 90, "")
	require.NoError(t, err)

	_, err = s.Delete(ctx, 424242)
	require.ErrorIs(t, err, store.ErrMarkNotFound)
	require.Len(t, s.List(), 1)
}

func TestMarkStoreDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := store.NewMarkStore(ctx, newTestKV(t), zerolog.Nop())

	for _, subject := range []string{"Math", "Physics", "Art"} {
		_, err := s.Upsert(ctx, "Ann", subject, 90, "")
		require.NoError(t, err)
	}

	removed, persisted := s.DeleteAll(ctx)
	require.Equal(t, 3, removed)
	require.True(t, persisted)
	require.Empty(t, s.List())
}

func TestMarkStoreCountsAndDistinct(t *testing.T) {
	ctx := context.Background()
	s := store.NewMarkStore(ctx, newTestKV(t), zerolog.Nop())

	seed := []struct {
		student string
		subject string
	}{
		{"Ahmed Ali", "Mathematics"},
		{"ahmed ali", "Physics"},
		{"Sara Mohamed", "Mathematics"},
	}
	for _, item := range seed {
		_, err := s.Upsert(ctx, item.student, item.subject, 80, "")
		require.NoError(t, err)
	}

	require.Equal(t, 2, s.CountDistinctStudents())
	require.Equal(t, []string{"Ahmed Ali", "Sara Mohamed"}, s.Students())
	require.Equal(t, []string{"Mathematics", "Physics"}, s.Subjects())

	require.Len(t, s.FindByStudent("AHMED ALI"), 2)
	require.Empty(t, s.FindByStudent("nobody"))
}

func TestMarkStoreIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	s := store.NewMarkStore(ctx, newTestKV(t), zerolog.Nop())

	seen := make(map[int64]struct{})
	subjects := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, subject := range subjects {
		result, err := s.Upsert(ctx, "Ann", subject, 50, "")
		require.NoError(t, err)
		_, dup := seen[result.Record.ID]
		require.False(t, dup, "duplicate id %d", result.Record.ID)
		seen[result.Record.ID] = struct{}{}
	}
}

func TestMarkStoreReloadsFromStorage(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	first := store.NewMarkStore(ctx, kv, zerolog.Nop())
	created, err := first.Upsert(ctx, "Ann", "Math", 90, "123")
	require.NoError(t, err)

	// A fresh store over the same backend sees the persisted collection
	// and keeps allocating past the existing ids.
	second := store.NewMarkStore(ctx, kv, zerolog.Nop())
	require.Len(t, second.List(), 1)

	found, err := second.FindOne("ann", "math")
	require.NoError(t, err)
	require.Equal(t, created.Record, found)

	added, err := second.Upsert(ctx, "Ann", "Physics", 80, "")
	require.NoError(t, err)
	require.NotEqual(t, created.Record.ID, added.Record.ID)
}

func TestMarkStoreKeepsMutationWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	s := store.NewMarkStore(ctx, failingKV{}, zerolog.Nop())

	result, err := s.Upsert(ctx, "Ann", "Math", 90, "")
	require.NoError(t, err)
	require.False(t, result.Persisted)

	// The in-memory collection stays authoritative for the session.
	require.Len(t, s.List(), 1)

	found, err := s.FindOne("Ann", "Math")
	require.NoError(t, err)
	require.Equal(t, 90, found.Mark)
}
