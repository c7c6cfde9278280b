package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	BackendPostgres  = "postgres"
	BackendDatastore = "datastore"
	BackendMemory    = "memory"
)

var DefaultEnvConfig *EnvConfig

// EnvConfig is the process configuration read from the environment.
type EnvConfig struct {
	// server config
	APP_PORT        string `validate:"required,numeric"`
	GATEWAY_BACKEND string `validate:"oneof=postgres datastore memory"`
	// database config
	DB_HOST              string `validate:"required_if=GATEWAY_BACKEND postgres"`
	DB_PORT              int    `validate:"gt=0,lt=65536"`
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string `validate:"required_if=GATEWAY_BACKEND postgres"`
	DB_SSL_MODE          string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int `validate:"gte=0"`
	DB_MAX_OPEN_CONNS    int `validate:"gte=0"`
	// datastore config
	DATASTORE_PROJECT_ID string `validate:"required_if=GATEWAY_BACKEND datastore"`
	// search index config, empty disables the index
	ELASTIC_URL string `validate:"omitempty,url"`
	// graphql config
	STREAM_INTERVAL         time.Duration `validate:"gt=0"`
	BATCH_MAX_CONCURRENCY   int           `validate:"gt=0"`
	GRAPHQL_MAX_PARALLELISM int           `validate:"gt=0"`
	IDEMPOTENCY_TTL         time.Duration `validate:"gt=0"`
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string `validate:"oneof=debug info warn error"`
}

// LoadEnvConfig reads .env when present, then the process environment.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg := &EnvConfig{
		APP_PORT:                getEnvString("APP_PORT", "8080"),
		GATEWAY_BACKEND:         getEnvString("GATEWAY_BACKEND", BackendPostgres),
		DB_HOST:                 getEnvString("DB_HOST", "localhost"),
		DB_PORT:                 getEnvInt("DB_PORT", 5432),
		DB_USER:                 getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:             getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:                 getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:             getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME:    getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
		DATASTORE_PROJECT_ID:    getEnvString("DATASTORE_PROJECT_ID", ""),
		ELASTIC_URL:             getEnvString("ELASTIC_URL", ""),
		STREAM_INTERVAL:         getEnvDuration("STREAM_INTERVAL", 3*time.Second),
		BATCH_MAX_CONCURRENCY:   getEnvInt("BATCH_MAX_CONCURRENCY", 8),
		GRAPHQL_MAX_PARALLELISM: getEnvInt("GRAPHQL_MAX_PARALLELISM", 20),
		IDEMPOTENCY_TTL:         getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute),
		LOG_FILE_PATH:           getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:               getEnvString("LOG_LEVEL", "info"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid environment config: %w", err)
	}

	DefaultEnvConfig = cfg
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
