package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrStorageProviderUnknown   = errors.New("publish config: storage provider is invalid")
	ErrStorageDSNRequired       = errors.New("publish config: storage dsn is required for sql providers")
	ErrSchedulerIntervalInvalid = errors.New("publish config: scheduler interval must be positive")
	ErrSchedulerBatchInvalid    = errors.New("publish config: scheduler batch size must be positive")
	ErrConcurrencyInvalid       = errors.New("publish config: concurrency must be positive")
	ErrItemTimeoutInvalid       = errors.New("publish config: item timeout must be positive")
	ErrBulkMaxItemsInvalid      = errors.New("publish config: bulk max items must be positive")
	ErrHTTPBasePathInvalid      = errors.New("publish config: http base path must start with /")
	ErrCacheTTLInvalid          = errors.New("publish config: cache ttl must be zero or positive")
	ErrLoggingProviderUnknown   = errors.New("publish config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("publish config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("publish config: logging format is invalid")
)

// Storage providers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config aggregates runtime settings for the publish module.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Bulk      BulkConfig      `toml:"bulk"`
	HTTP      HTTPConfig      `toml:"http"`
	Cache     CacheConfig     `toml:"cache"`
	Logging   LoggingConfig   `toml:"logging"`
}

// StorageConfig selects the item store.
type StorageConfig struct {
	Provider string `toml:"provider"`
	DSN      string `toml:"dsn"`
	Debug    bool   `toml:"debug"`
}

// SchedulerConfig drives the periodic sweep.
type SchedulerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Interval    Duration `toml:"interval"`
	BatchSize   int      `toml:"batch_size"`
	Concurrency int      `toml:"concurrency"`
	ItemTimeout Duration `toml:"item_timeout"`
	// Cron is the expression advertised to go-command cron registries.
	Cron string `toml:"cron"`
}

// BulkConfig bounds bulk mutation requests.
type BulkConfig struct {
	MaxItems    int      `toml:"max_items"`
	Concurrency int      `toml:"concurrency"`
	ItemTimeout Duration `toml:"item_timeout"`
}

// HTTPConfig configures the admin API.
type HTTPConfig struct {
	Addr     string `toml:"addr"`
	BasePath string `toml:"base_path"`
	Metrics  bool   `toml:"metrics"`
}

// CacheConfig captures folder lookup caching.
type CacheConfig struct {
	Enabled bool     `toml:"enabled"`
	TTL     Duration `toml:"ttl"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `toml:"provider"`
	Level     string   `toml:"level"`
	Format    string   `toml:"format"`
	AddSource bool     `toml:"add_source"`
	Focus     []string `toml:"focus"`
}

// DefaultConfig returns the settings used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: StorageMemory,
		},
		Scheduler: SchedulerConfig{
			Enabled:     true,
			Interval:    Duration(time.Minute),
			BatchSize:   100,
			Concurrency: 4,
			ItemTimeout: Duration(5 * time.Second),
			Cron:        "* * * * *",
		},
		Bulk: BulkConfig{
			MaxItems:    500,
			Concurrency: 4,
			ItemTimeout: Duration(5 * time.Second),
		},
		HTTP: HTTPConfig{
			Addr:     ":8080",
			BasePath: "/admin/api",
			Metrics:  true,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration(time.Minute),
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch provider := normalize(cfg.Storage.Provider); provider {
	case StorageMemory:
	case StorageSQLite, StoragePostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Scheduler.Enabled && cfg.Scheduler.Interval <= 0 {
		return ErrSchedulerIntervalInvalid
	}
	if cfg.Scheduler.BatchSize <= 0 {
		return ErrSchedulerBatchInvalid
	}
	if cfg.Scheduler.Concurrency <= 0 {
		return fmt.Errorf("%w: scheduler", ErrConcurrencyInvalid)
	}
	if cfg.Scheduler.ItemTimeout <= 0 {
		return fmt.Errorf("%w: scheduler", ErrItemTimeoutInvalid)
	}

	if cfg.Bulk.MaxItems <= 0 {
		return ErrBulkMaxItemsInvalid
	}
	if cfg.Bulk.Concurrency <= 0 {
		return fmt.Errorf("%w: bulk", ErrConcurrencyInvalid)
	}
	if cfg.Bulk.ItemTimeout <= 0 {
		return fmt.Errorf("%w: bulk", ErrItemTimeoutInvalid)
	}

	if base := strings.TrimSpace(cfg.HTTP.BasePath); base != "" && !strings.HasPrefix(base, "/") {
		return fmt.Errorf("%w: %s", ErrHTTPBasePathInvalid, base)
	}
	if cfg.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Logging.Provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "", "console", "gologger", "none":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
