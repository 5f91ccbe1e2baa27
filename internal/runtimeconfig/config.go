package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "TRANSLATABLE_"

var ErrDefaultLocaleRequired = errors.New("translatable config: default locale is required")
var ErrFallbackLocaleRequired = errors.New("translatable config: fallback locale is required")
var ErrLocalesRequired = errors.New("translatable config: at least one locale is required")
var ErrChannelsRequired = errors.New("translatable config: at least one channel is required")
var ErrChannelDefaultUnknown = errors.New("translatable config: default channel must be listed in available channels")
var ErrCacheTTLInvalid = errors.New("translatable config: cache ttl must be zero or positive")
var ErrDatabaseDriverUnknown = errors.New("translatable config: database driver is invalid")
var ErrLoggingProviderRequired = errors.New("translatable config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("translatable config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("translatable config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("translatable config: logging format is invalid")

// Config aggregates the ambient settings of translated attributes.
type Config struct {
	// DefaultLocale is the active locale when the context carries none.
	DefaultLocale string `toml:"default_locale" env:"DEFAULT_LOCALE"`
	// FallbackLocale is the default fallback key of locale attributes.
	FallbackLocale string `toml:"fallback_locale" env:"FALLBACK_LOCALE"`
	// Locales lists the available locales.
	Locales  []string       `toml:"locales" env:"LOCALES" envSeparator:","`
	Channels ChannelsConfig `toml:"channels" envPrefix:"CHANNELS_"`
	Schema   SchemaConfig   `toml:"schema" envPrefix:"SCHEMA_"`
	Catalog  CatalogConfig  `toml:"catalog" envPrefix:"CATALOG_"`
	Cache    CacheConfig    `toml:"cache" envPrefix:"CACHE_"`
	Database DatabaseConfig `toml:"database" envPrefix:"DATABASE_"`
	Features Features       `toml:"features" envPrefix:"FEATURES_"`
	Logging  LoggingConfig  `toml:"logging" envPrefix:"LOGGING_"`
}

// ChannelsConfig captures the sales channel key domain.
type ChannelsConfig struct {
	Available []string `toml:"available" env:"AVAILABLE" envSeparator:","`
	Default   string   `toml:"default" env:"DEFAULT"`
}

// SchemaConfig controls storage classification.
type SchemaConfig struct {
	// Introspect queries the live database for column types at declaration.
	Introspect bool `toml:"introspect" env:"INTROSPECT"`
}

// CatalogConfig points at go-i18n message files that extend the locale list.
type CatalogConfig struct {
	Dir string `toml:"dir" env:"DIR"`
}

// CacheConfig captures read-through caching of record lookups.
type CacheConfig struct {
	Enabled bool          `toml:"enabled" env:"ENABLED"`
	TTL     time.Duration `toml:"ttl" env:"TTL"`
}

// DatabaseConfig is consumed by the command line tool.
type DatabaseConfig struct {
	Driver string `toml:"driver" env:"DRIVER"`
	DSN    string `toml:"dsn" env:"DSN"`
}

// Features toggles optional behaviour.
type Features struct {
	Logger bool `toml:"logger" env:"LOGGER"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `toml:"provider" env:"PROVIDER"`
	Level     string   `toml:"level" env:"LEVEL"`
	Format    string   `toml:"format" env:"FORMAT"`
	AddSource bool     `toml:"add_source" env:"ADD_SOURCE"`
	Focus     []string `toml:"focus" env:"FOCUS" envSeparator:","`
}

// DefaultConfig returns the defaults the declarations assume.
func DefaultConfig() Config {
	return Config{
		DefaultLocale:  "en",
		FallbackLocale: "de",
		Locales:        []string{"de", "en", "es"},
		Channels: ChannelsConfig{
			Available: []string{"vev", "ebay"},
			Default:   "vev",
		},
		Schema: SchemaConfig{
			Introspect: true,
		},
		Cache: CacheConfig{
			TTL: time.Minute,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return ErrDefaultLocaleRequired
	}
	if strings.TrimSpace(cfg.FallbackLocale) == "" {
		return ErrFallbackLocaleRequired
	}
	if len(trimAll(cfg.Locales)) == 0 {
		return ErrLocalesRequired
	}
	channels := trimAll(cfg.Channels.Available)
	if len(channels) == 0 {
		return ErrChannelsRequired
	}
	if def := strings.ToLower(strings.TrimSpace(cfg.Channels.Default)); !slices.Contains(lowerAll(channels), def) {
		return fmt.Errorf("%w: %q", ErrChannelDefaultUnknown, cfg.Channels.Default)
	}
	if cfg.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}
	if driver := strings.TrimSpace(cfg.Database.Driver); driver != "" && NormalizeDriver(driver) == "" {
		return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, driver)
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// NormalizeDriver maps driver aliases to "postgres" or "sqlite". Unknown
// drivers map to "".
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pg", "pgx":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return ""
	}
}

// LoadFile decodes a TOML file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("translatable config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("translatable config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from TRANSLATABLE_* environment variables. Unset
// variables leave the current values in place.
func ApplyEnv(cfg *Config) error {
	if cfg == nil {
		return errors.New("translatable config: nil config")
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("translatable config: env: %w", err)
	}
	return nil
}

// Load resolves defaults, then path (when set), then the environment, and
// validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
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

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, value := range in {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, value := range in {
		out[i] = strings.ToLower(value)
	}
	return out
}
