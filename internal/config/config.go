// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/fanhop/pkg/logger"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverS3     = "s3"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BaseURL is the public origin used in share links.
	BaseURL string `koanf:"base_url"`

	// DefaultEdition is served when a request names no edition.
	DefaultEdition string `koanf:"default_edition"`

	// EditionsDir optionally holds edition YAML files that add to or
	// replace the embedded ones.
	EditionsDir string `koanf:"editions_dir"`

	// StoreDriver selects where saved models live: memory, sqlite or s3.
	StoreDriver string `koanf:"store_driver"`
	SQLitePath  string `koanf:"sqlite_path"`
	S3Bucket    string `koanf:"s3_bucket"`
	S3Prefix    string `koanf:"s3_prefix"`

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// EventQueueSize bounds the grading job queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of grading workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the set of coalesced pending jobs.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		BaseURL:             "http://localhost:9080",
		DefaultEdition:      "2025",
		StoreDriver:         DriverMemory,
		SQLitePath:          "fanhop.db",
		S3Prefix:            "fanhop",
		CORSOrigins:         []string{"*"},
		EventQueueSize:      4096,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		ShutdownTimeout:     10 * time.Second,
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.DefaultEdition == "" {
		return fmt.Errorf("%w: default_edition must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite store", ErrInvalidConfig)
		}
	case DriverS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("%w: s3_bucket is required for the s3 store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.EventQueueSize < 1 || c.WorkerCount < 1 || c.DedupeSize < 1 {
		return fmt.Errorf("%w: queue_size, worker_count and dedupe_size must be positive", ErrInvalidConfig)
	}
	if c.MaxLeaderboardLimit < 1 {
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
