package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/markbook-app/markbook-api/internal/config"
)

// ErrKeyNotFound indicates the requested key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// Persisted collection keys. The layout under each key is a JSON array, the
// same layout the gradebook has always used.
const (
	MarksKey      = "studentMarks"
	CourseworkKey = "coursework"
)

// KeyValueStore is the persistence boundary: a fallible string key-value
// store with whole-value reads and writes.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open connects the key-value backend selected by the configuration.
func Open(cfg config.Config) (KeyValueStore, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres:
		return OpenPostgres(cfg.DatabaseURL)
	case config.DriverRedis:
		return OpenRedis(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
