package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage driver names accepted by the configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	StorageDriver          string
	SQLitePath             string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	SessionTTL             time.Duration
	TeacherSecret          string
	ManagerSecret          string
	DefaultStudentPassword string
	CORSOrigins            string
	SeedEnabled            bool
	SeedToken              string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MARKBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Markbook API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("sqlite.path", "markbook.db")
	v.SetDefault("session.ttl", "12h")
	// Gate secrets and the shared student password default to the classroom
	// demo values. Override them for anything beyond a demo.
	v.SetDefault("teacher.secret", "4321")
	v.SetDefault("manager.secret", "1234")
	v.SetDefault("student.default_password", "123")
	v.SetDefault("seed.enabled", false)
	v.SetDefault("cors.origins", "*")

	ttlString := v.GetString("session.ttl")
	if ttlString == "" {
		ttlString = "12h"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		StorageDriver:          strings.ToLower(v.GetString("storage.driver")),
		SQLitePath:             v.GetString("sqlite.path"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		SessionTTL:             ttl,
		TeacherSecret:          v.GetString("teacher.secret"),
		ManagerSecret:          v.GetString("manager.secret"),
		DefaultStudentPassword: v.GetString("student.default_password"),
		CORSOrigins:            v.GetString("cors.origins"),
		SeedEnabled:            v.GetBool("seed.enabled"),
		SeedToken:              v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StorageDriver {
	case DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.StorageDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided for the postgres driver")
	}

	if cfg.StorageDriver == DriverRedis && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("redis url must be provided for the redis driver")
	}

	return cfg, nil
}
