package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Commit log backends.
const (
	CommitLogSQLite = "sqlite"
	CommitLogNATS   = "nats"
	CommitLogMemory = "memory"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port               string        `yaml:"port"`
	CommitLog          string        `yaml:"commitlog"`
	DBPath             string        `yaml:"db_path"`
	NATSURL            string        `yaml:"nats_url"`
	NATSStream         string        `yaml:"nats_stream"`
	TickInterval       time.Duration `yaml:"tick_interval"`
	ReferenceRetention time.Duration `yaml:"reference_retention"`
	LogLevel           string        `yaml:"log_level"`
	MaxUploadBytes     int64         `yaml:"max_upload_bytes"`
	IngestRatePerSec   int           `yaml:"ingest_rate_per_sec"`
	IngestBurst        int           `yaml:"ingest_burst"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Port:             "8080",
		CommitLog:        CommitLogSQLite,
		DBPath:           "shsdb.db",
		NATSURL:          "nats://127.0.0.1:4222",
		NATSStream:       "SHSDB",
		TickInterval:     time.Second,
		LogLevel:         "info",
		MaxUploadBytes:   32 << 20,
		IngestRatePerSec: 10,
		IngestBurst:      20,
	}
}

// Load layers an optional .env file, an optional YAML file named by
// SHSDB_CONFIG and the process environment over Default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("SHSDB_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.CommitLog = getEnv("COMMITLOG", cfg.CommitLog)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.NATSURL = getEnv("NATS_URL", cfg.NATSURL)
	cfg.NATSStream = getEnv("NATS_STREAM", cfg.NATSStream)
	cfg.TickInterval = getEnvAsDuration("TICK_INTERVAL", cfg.TickInterval)
	cfg.ReferenceRetention = getEnvAsDuration("REFERENCE_RETENTION", cfg.ReferenceRetention)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.MaxUploadBytes = int64(getEnvAsInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.IngestRatePerSec = getEnvAsInt("INGEST_RATE_PER_SEC", cfg.IngestRatePerSec)
	cfg.IngestBurst = getEnvAsInt("INGEST_BURST", cfg.IngestBurst)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.CommitLog {
	case CommitLogSQLite:
		if c.DBPath == "" {
			return errors.New("config: DB_PATH is required for the sqlite commit log")
		}
	case CommitLogNATS:
		if c.NATSURL == "" || c.NATSStream == "" {
			return errors.New("config: NATS_URL and NATS_STREAM are required for the nats commit log")
		}
	case CommitLogMemory:
	default:
		return fmt.Errorf("config: unknown commit log %q", c.CommitLog)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.ReferenceRetention < 0 {
		return fmt.Errorf("config: REFERENCE_RETENTION must not be negative, got %s", c.ReferenceRetention)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.IngestRatePerSec <= 0 || c.IngestBurst <= 0 {
		return errors.New("config: INGEST_RATE_PER_SEC and INGEST_BURST must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	slog.Warn("invalid integer in environment, using default", "key", key, "value", valueStr, "default", fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	slog.Warn("invalid duration in environment, using default", "key", key, "value", valueStr, "default", fallback)
	return fallback
}
