package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/markbook-app/markbook-api/internal/models"
)

// LoadMarks reads the persisted mark collection. An absent key, a payload
// that is not a JSON array, and entries that fail domain validation all
// degrade silently: the caller gets back whatever loaded cleanly, down to an
// empty collection. Storage faults never block startup.
func LoadMarks(ctx context.Context, kv KeyValueStore, logger zerolog.Logger) []models.MarkRecord {
	records := make([]models.MarkRecord, 0)

	for _, raw := range loadArray(ctx, kv, MarksKey, logger) {
		var record models.MarkRecord
		if err := json.Unmarshal(raw, &record); err != nil || !record.Valid() {
			logger.Warn().Str("key", MarksKey).Msg("dropping malformed mark record")
			continue
		}
		records = append(records, record)
	}

	return records
}

// SaveMarks serializes the full mark collection and overwrites its key.
func SaveMarks(ctx context.Context, kv KeyValueStore, records []models.MarkRecord) error {
	return saveArray(ctx, kv, MarksKey, records)
}

// LoadCoursework reads the persisted coursework collection under the same
// degrade-to-empty contract as LoadMarks.
func LoadCoursework(ctx context.Context, kv KeyValueStore, logger zerolog.Logger) []models.Coursework {
	items := make([]models.Coursework, 0)

	for _, raw := range loadArray(ctx, kv, CourseworkKey, logger) {
		var item models.Coursework
		if err := json.Unmarshal(raw, &item); err != nil || !item.Valid() {
			logger.Warn().Str("key", CourseworkKey).Msg("dropping malformed coursework entry")
			continue
		}
		items = append(items, item)
	}

	return items
}

// SaveCoursework serializes the full coursework collection and overwrites
// its key.
func SaveCoursework(ctx context.Context, kv KeyValueStore, items []models.Coursework) error {
	return saveArray(ctx, kv, CourseworkKey, items)
}

func loadArray(ctx context.Context, kv KeyValueStore, key string, logger zerolog.Logger) []json.RawMessage {
	payload, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			logger.Warn().Err(err).Str("key", key).Msg("failed to read persisted collection, starting empty")
		}
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("persisted collection is not a JSON array, starting empty")
		return nil
	}

	return entries
}

func saveArray(ctx context.Context, kv KeyValueStore, key string, collection interface{}) error {
	payload, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}

	if err := kv.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}

	return nil
}
