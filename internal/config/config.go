package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
// Values from an optional .env file fill in variables the environment leaves
// unset.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// Catalog access.
	CatalogURL     string        `env:"CATALOG_URL" validate:"required,url"`
	DatasetID      string        `env:"DATASET_ID" validate:"required"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT"`
	FetchRateLimit float64       `env:"FETCH_RATE_LIMIT" validate:"gt=0"`
	CacheTTL       time.Duration `env:"CACHE_TTL"`

	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`

	// Publishing is disabled when no brokers are configured.
	KafkaBrokers   []string `env:"KAFKA_BROKERS"`
	KafkaTopic     string   `env:"KAFKA_TOPIC" validate:"required"`
	KafkaBatchSize int      `env:"BATCH_SIZE"`

	// Persistence is disabled when DATABASE_URL is empty.
	DatabaseURL       string `env:"DATABASE_URL"`
	RetentionDays     int    `env:"SNAPSHOT_RETENTION_DAYS" validate:"gte=1"`
	RetentionSchedule string `env:"RETENTION_SCHEDULE" validate:"required"`
}

// KafkaEnabled reports whether snapshots are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// StorageEnabled reports whether snapshots are persisted.
func (c *Config) StorageEnabled() bool { return c.DatabaseURL != "" }

// Load reads configuration from environment variables, applying defaults where
// unset. ENV_FILE names the dotenv file to read first (default ".env"); a
// missing file is not an error.
func Load() (*Config, error) {
	envFile := sharedcfg.EnvOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("FETCH_RATE_LIMIT", "2"), 64)
	if err != nil {
		return nil, errors.New("invalid FETCH_RATE_LIMIT: must be a number")
	}
	retentionDays, err := strconv.Atoi(sharedcfg.EnvOrDefault("SNAPSHOT_RETENTION_DAYS", "30"))
	if err != nil {
		return nil, errors.New("invalid SNAPSHOT_RETENTION_DAYS: must be an integer")
	}

	cfg := &Config{
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		CatalogURL:        sharedcfg.EnvOrDefault("CATALOG_URL", "https://data.carpathia.gov.ua"),
		DatasetID:         os.Getenv("DATASET_ID"),
		FetchTimeout:      fetchTimeout,
		FetchRateLimit:    rateLimit,
		CacheTTL:          cacheTTL,
		RefreshInterval:   refreshInterval,
		KafkaBrokers:      sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        sharedcfg.EnvOrDefault("KAFKA_TOPIC", "civil-shelters"),
		KafkaBatchSize:    batchSize,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RetentionDays:     retentionDays,
		RetentionSchedule: sharedcfg.EnvOrDefault("RETENTION_SCHEDULE", "0 3 * * *"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

// validate reports the first failing field by its environment variable name.
func validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	err := v.Struct(cfg)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("%s is required", fe.Field())
		}
		return fmt.Errorf("invalid %s: failed %s %s", fe.Field(), fe.Tag(), fe.Param())
	}
	return err
}
