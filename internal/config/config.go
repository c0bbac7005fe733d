// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/tandem/internal/domain/dates"
)

// Default limits for HTTP report handling.
const (
	defaultMaxUploadBytes = 10 << 20 // 10 MiB of CSV per request
	defaultDedupeSize     = 50_000
	defaultTopLimit       = 10
	maxTopLimit           = 100
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatePatterns lists the accepted assignment date formats, tried
	// in order.
	DatePatterns []string `koanf:"date_patterns"`

	// CSVDelimiter separates fields in uploaded reports. One
	// character.
	CSVDelimiter string `koanf:"csv_delimiter"`

	// Dedupe drops repeated assignment rows during load.
	Dedupe bool `koanf:"dedupe"`

	// DedupeSize bounds the deduplication cache. Zero or negative
	// means unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxUploadBytes caps the size of an uploaded CSV report.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// DefaultTopLimit is used for POST /toppairs without ?limit.
	DefaultTopLimit int `koanf:"default_top_limit"`

	// MaxTopLimit caps POST /toppairs?limit.
	MaxTopLimit int `koanf:"max_top_limit"`

	// HTTP server timeouts.
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		DatePatterns:    dates.DefaultPatterns(),
		CSVDelimiter:    ",",
		Dedupe:          false,
		DedupeSize:      defaultDedupeSize,
		MaxUploadBytes:  defaultMaxUploadBytes,
		DefaultTopLimit: defaultTopLimit,
		MaxTopLimit:     maxTopLimit,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
	return c
}

// Delimiter returns the CSV field separator as a rune. Valid only
// after validate.
func (c *Config) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ','
}

// validate rejects configurations the service cannot run with.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if len([]rune(c.CSVDelimiter)) != 1 {
		return fmt.Errorf("%w: csv_delimiter must be a single character", ErrInvalidConfig)
	}
	if d := c.Delimiter(); d == '\n' || d == '\r' {
		return fmt.Errorf("%w: csv_delimiter must not be a line break", ErrInvalidConfig)
	}
	if len(c.DatePatterns) == 0 {
		return fmt.Errorf("%w: date_patterns must not be empty", ErrInvalidConfig)
	}
	for _, p := range c.DatePatterns {
		if _, err := dates.LayoutForPattern(p); err != nil {
			return fmt.Errorf("%w: date pattern %q: %v", ErrInvalidConfig, p, err)
		}
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	}
	if c.DefaultTopLimit < 1 {
		return fmt.Errorf("%w: default_top_limit must be at least 1", ErrInvalidConfig)
	}
	if c.MaxTopLimit < c.DefaultTopLimit {
		return fmt.Errorf("%w: max_top_limit must not be below default_top_limit", ErrInvalidConfig)
	}
	return nil
}
