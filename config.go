package publish

import "github.com/goliatone/go-publish/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrSchedulerIntervalInvalid = runtimeconfig.ErrSchedulerIntervalInvalid
	ErrSchedulerBatchInvalid    = runtimeconfig.ErrSchedulerBatchInvalid
	ErrConcurrencyInvalid       = runtimeconfig.ErrConcurrencyInvalid
	ErrItemTimeoutInvalid       = runtimeconfig.ErrItemTimeoutInvalid
	ErrBulkMaxItemsInvalid      = runtimeconfig.ErrBulkMaxItemsInvalid
	ErrHTTPBasePathInvalid      = runtimeconfig.ErrHTTPBasePathInvalid
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	StorageConfig   = runtimeconfig.StorageConfig
	SchedulerConfig = runtimeconfig.SchedulerConfig
	BulkConfig      = runtimeconfig.BulkConfig
	HTTPConfig      = runtimeconfig.HTTPConfig
	CacheConfig     = runtimeconfig.CacheConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	Duration        = runtimeconfig.Duration
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a TOML file over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
