package translatable

import "github.com/goliatone/go-translatable/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired   = runtimeconfig.ErrDefaultLocaleRequired
	ErrFallbackLocaleRequired  = runtimeconfig.ErrFallbackLocaleRequired
	ErrLocalesRequired         = runtimeconfig.ErrLocalesRequired
	ErrChannelsRequired        = runtimeconfig.ErrChannelsRequired
	ErrChannelDefaultUnknown   = runtimeconfig.ErrChannelDefaultUnknown
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrDatabaseDriverUnknown   = runtimeconfig.ErrDatabaseDriverUnknown
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ChannelsConfig = runtimeconfig.ChannelsConfig
	SchemaConfig   = runtimeconfig.SchemaConfig
	CatalogConfig  = runtimeconfig.CatalogConfig
	CacheConfig    = runtimeconfig.CacheConfig
	DatabaseConfig = runtimeconfig.DatabaseConfig
	Features       = runtimeconfig.Features
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig resolves defaults, an optional TOML file, and TRANSLATABLE_*
// environment overrides.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
