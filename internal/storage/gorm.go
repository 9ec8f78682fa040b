package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is the single-table layout behind the SQL-backed stores. The value
// column holds the serialized collection as a JSON document.
type KVEntry struct {
	Key   string         `gorm:"primaryKey;size:64"`
	Value datatypes.JSON `gorm:"not null"`
}

// TableName keeps the table name stable across deployments.
func (KVEntry) TableName() string {
	return "kv_entries"
}

type gormStore struct {
	db *gorm.DB
}

// OpenSQLite opens a file-backed store at the given path. This is the
// default backend: a single local file, like the browser storage the
// gradebook grew out of.
func OpenSQLite(path string) (KeyValueStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	return newGormStore(db)
}

// OpenPostgres connects a PostgreSQL-backed store using the provided DSN.
func OpenPostgres(dsn string) (KeyValueStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return newGormStore(db)
}

// NewGormStore wraps an existing GORM connection, used by tests running
// against an in-memory sqlite database.
func NewGormStore(db *gorm.DB) (KeyValueStore, error) {
	return newGormStore(db)
}

func newGormStore(db *gorm.DB) (KeyValueStore, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate key-value table: %w", err)
	}

	return &gormStore{db: db}, nil
}

func (s *gormStore) Get(ctx context.Context, key string) (string, error) {
	var entry KVEntry
	if err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrKeyNotFound
		}
		return "", err
	}

	return string(entry.Value), nil
}

func (s *gormStore) Set(ctx context.Context, key, value string) error {
	entry := KVEntry{Key: key, Value: datatypes.JSON(value)}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&entry).Error
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
