package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrStorageDriverRequired indicates the storage section is missing a driver.
var ErrStorageDriverRequired = errors.New("janbhas config: storage driver is required")
var ErrStorageDriverUnknown = errors.New("janbhas config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("janbhas config: storage dsn is required")
var ErrContentDirRequired = errors.New("janbhas config: content directory is required")
var ErrEditorRequired = errors.New("janbhas config: editor name is required")
var ErrTransliterationEndpointRequired = errors.New("janbhas config: transliteration endpoint is required")
var ErrTransliterationTimeoutInvalid = errors.New("janbhas config: transliteration timeout must be zero or positive")
var ErrLoggingLevelInvalid = errors.New("janbhas config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("janbhas config: logging format is invalid")

// Config aggregates the settings the ingestion module needs to run.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Editor          string
	Content         ContentConfig
	Storage         StorageConfig
	Transliteration TransliterationConfig
	Logging         LoggingConfig
}

// ContentConfig locates the markdown tree to ingest.
type ContentConfig struct {
	Dir     string
	Pattern string
}

// StorageConfig selects the database driver and connection string.
type StorageConfig struct {
	Driver string
	DSN    string
}

// TransliterationConfig wires the external transliteration service and the
// curated mapping overrides consulted before it.
type TransliterationConfig struct {
	Endpoint    string
	Timeout     time.Duration
	MappingsDir string
}

// LoggingConfig captures options for runtime logging.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// DefaultConfig returns opinionated defaults for a local sqlite setup.
func DefaultConfig() Config {
	return Config{
		Editor: "janbhas",
		Content: ContentConfig{
			Dir:     "content",
			Pattern: "*.md",
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file:janbhas.db?_fk=1",
		},
		Transliteration: TransliterationConfig{
			Timeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		return ErrStorageDriverRequired
	}
	if !isSupportedDriver(driver) {
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.Editor) == "" {
		return ErrEditorRequired
	}
	if cfg.Transliteration.Timeout < 0 {
		return ErrTransliterationTimeoutInvalid
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "sqlite", "sqlite3", "postgres":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
