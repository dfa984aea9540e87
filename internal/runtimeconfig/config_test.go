package runtimeconfig_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-publish/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.Scheduler.Interval.Std() != time.Minute || cfg.Scheduler.BatchSize != 100 || cfg.Scheduler.Concurrency != 4 {
		t.Fatalf("unexpected scheduler defaults %+v", cfg.Scheduler)
	}
	if cfg.Bulk.MaxItems != 500 {
		t.Fatalf("expected bulk max 500, got %d", cfg.Bulk.MaxItems)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"unknown storage", func(c *runtimeconfig.Config) { c.Storage.Provider = "mongo" }, runtimeconfig.ErrStorageProviderUnknown},
		{"sqlite without dsn", func(c *runtimeconfig.Config) { c.Storage.Provider = "sqlite" }, runtimeconfig.ErrStorageDSNRequired},
		{"zero interval", func(c *runtimeconfig.Config) { c.Scheduler.Interval = 0 }, runtimeconfig.ErrSchedulerIntervalInvalid},
		{"zero batch", func(c *runtimeconfig.Config) { c.Scheduler.BatchSize = 0 }, runtimeconfig.ErrSchedulerBatchInvalid},
		{"zero bulk concurrency", func(c *runtimeconfig.Config) { c.Bulk.Concurrency = 0 }, runtimeconfig.ErrConcurrencyInvalid},
		{"negative item timeout", func(c *runtimeconfig.Config) { c.Scheduler.ItemTimeout = -1 }, runtimeconfig.ErrItemTimeoutInvalid},
		{"zero bulk max", func(c *runtimeconfig.Config) { c.Bulk.MaxItems = 0 }, runtimeconfig.ErrBulkMaxItemsInvalid},
		{"relative base path", func(c *runtimeconfig.Config) { c.HTTP.BasePath = "admin" }, runtimeconfig.ErrHTTPBasePathInvalid},
		{"negative cache ttl", func(c *runtimeconfig.Config) { c.Cache.TTL = -1 }, runtimeconfig.ErrCacheTTLInvalid},
		{"unknown logger", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"bad level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"bad format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidateDisabledSchedulerIgnoresInterval(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Scheduler.Enabled = false
	cfg.Scheduler.Interval = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled scheduler to skip interval check, got %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publish.toml")
	body := `
[storage]
provider = "sqlite"
dsn = "file:publish.db?cache=shared"

[scheduler]
interval = "30s"
batch_size = 25

[logging]
provider = "gologger"
format = "pretty"
focus = ["publish.sweeper"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Provider != runtimeconfig.StorageSQLite || cfg.Storage.DSN == "" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Scheduler.Interval.Std() != 30*time.Second || cfg.Scheduler.BatchSize != 25 {
		t.Fatalf("unexpected scheduler %+v", cfg.Scheduler)
	}
	if cfg.Scheduler.Concurrency != 4 || cfg.Bulk.MaxItems != 500 {
		t.Fatalf("expected untouched sections to keep defaults")
	}
	if len(cfg.Logging.Focus) != 1 || cfg.Logging.Focus[0] != "publish.sweeper" {
		t.Fatalf("unexpected logging focus %v", cfg.Logging.Focus)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()

	badDuration := filepath.Join(dir, "duration.toml")
	_ = os.WriteFile(badDuration, []byte("[scheduler]\ninterval = \"soon\"\n"), 0o600)
	if _, err := runtimeconfig.Load(badDuration); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}

	unknown := filepath.Join(dir, "unknown.toml")
	_ = os.WriteFile(unknown, []byte("[themes]\nbase = \"x\"\n"), 0o600)
	if _, err := runtimeconfig.Load(unknown); err == nil {
		t.Fatalf("expected unknown section to be rejected")
	}

	invalid := filepath.Join(dir, "invalid.toml")
	_ = os.WriteFile(invalid, []byte("[bulk]\nmax_items = 0\n"), 0o600)
	if _, err := runtimeconfig.Load(invalid); !errors.Is(err, runtimeconfig.ErrBulkMaxItemsInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := runtimeconfig.Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := runtimeconfig.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Provider != runtimeconfig.StorageMemory {
		t.Fatalf("expected default storage, got %q", cfg.Storage.Provider)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := runtimeconfig.Encode(&buf, runtimeconfig.DefaultConfig()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), `interval = '1m0s'`) && !strings.Contains(buf.String(), `interval = "1m0s"`) {
		t.Fatalf("expected textual duration in output, got:\n%s", buf.String())
	}
	var cfg runtimeconfig.Config
	if err := runtimeconfig.Decode(&buf, &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Scheduler.Interval.Std() != time.Minute {
		t.Fatalf("expected 1m interval after round trip, got %v", cfg.Scheduler.Interval)
	}
}
