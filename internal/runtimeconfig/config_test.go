package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/goliatone/go-translatable/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.FallbackLocale != "de" || cfg.Channels.Default != "vev" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{name: "default locale", mutate: func(c *runtimeconfig.Config) { c.DefaultLocale = " " }, want: runtimeconfig.ErrDefaultLocaleRequired},
		{name: "fallback locale", mutate: func(c *runtimeconfig.Config) { c.FallbackLocale = "" }, want: runtimeconfig.ErrFallbackLocaleRequired},
		{name: "locales", mutate: func(c *runtimeconfig.Config) { c.Locales = []string{" "} }, want: runtimeconfig.ErrLocalesRequired},
		{name: "channels", mutate: func(c *runtimeconfig.Config) { c.Channels.Available = nil }, want: runtimeconfig.ErrChannelsRequired},
		{name: "default channel", mutate: func(c *runtimeconfig.Config) { c.Channels.Default = "amazon" }, want: runtimeconfig.ErrChannelDefaultUnknown},
		{name: "cache ttl", mutate: func(c *runtimeconfig.Config) { c.Cache.TTL = -time.Second }, want: runtimeconfig.ErrCacheTTLInvalid},
		{name: "driver", mutate: func(c *runtimeconfig.Config) { c.Database.Driver = "oracle" }, want: runtimeconfig.ErrDatabaseDriverUnknown},
		{name: "provider required", mutate: func(c *runtimeconfig.Config) {
			c.Features.Logger = true
			c.Logging.Provider = ""
		}, want: runtimeconfig.ErrLoggingProviderRequired},
		{name: "provider unknown", mutate: func(c *runtimeconfig.Config) {
			c.Features.Logger = true
			c.Logging.Provider = "syslog"
		}, want: runtimeconfig.ErrLoggingProviderUnknown},
		{name: "level", mutate: func(c *runtimeconfig.Config) {
			c.Features.Logger = true
			c.Logging.Level = "loud"
		}, want: runtimeconfig.ErrLoggingLevelInvalid},
		{name: "format", mutate: func(c *runtimeconfig.Config) {
			c.Features.Logger = true
			c.Logging.Format = "xml"
		}, want: runtimeconfig.ErrLoggingFormatInvalid},
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

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translatable.toml")
	content := `
default_locale = "de"
locales = ["de", "fr"]

[channels]
available = ["vev", "ebay", "amazon"]

[cache]
enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := runtimeconfig.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.DefaultLocale != "de" || !slices.Equal(cfg.Locales, []string{"de", "fr"}) {
		t.Fatalf("unexpected locales %+v", cfg)
	}
	if cfg.Channels.Default != "vev" || len(cfg.Channels.Available) != 3 {
		t.Fatalf("unexpected channels %+v", cfg.Channels)
	}
	if cfg.FallbackLocale != "de" || !cfg.Schema.Introspect {
		t.Fatalf("defaults must survive partial files, got %+v", cfg)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != time.Minute {
		t.Fatalf("unexpected cache config %+v", cfg.Cache)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := runtimeconfig.LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TRANSLATABLE_DEFAULT_LOCALE", "es")
	t.Setenv("TRANSLATABLE_CHANNELS_DEFAULT", "ebay")
	t.Setenv("TRANSLATABLE_SCHEMA_INTROSPECT", "false")
	t.Setenv("TRANSLATABLE_LOCALES", "en,es")
	t.Setenv("TRANSLATABLE_DATABASE_DSN", "file::memory:")
	t.Setenv("TRANSLATABLE_CACHE_TTL", "5m")

	cfg := runtimeconfig.DefaultConfig()
	if err := runtimeconfig.ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.DefaultLocale != "es" || cfg.Channels.Default != "ebay" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Schema.Introspect {
		t.Fatalf("expected introspection to be disabled")
	}
	if !slices.Equal(cfg.Locales, []string{"en", "es"}) {
		t.Fatalf("unexpected locales %v", cfg.Locales)
	}
	if cfg.FallbackLocale != "de" {
		t.Fatalf("unset variables must keep defaults, got %q", cfg.FallbackLocale)
	}
	if cfg.Database.DSN != "file::memory:" {
		t.Fatalf("unexpected dsn %q", cfg.Database.DSN)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Fatalf("unexpected cache ttl %s", cfg.Cache.TTL)
	}
}

func TestNormalizeDriver(t *testing.T) {
	cases := map[string]string{"pgx": "postgres", "PostgreSQL": "postgres", "sqlite3": "sqlite", "mysql": ""}
	for in, want := range cases {
		if got := runtimeconfig.NormalizeDriver(in); got != want {
			t.Fatalf("NormalizeDriver(%q) = %q, want %q", in, got, want)
		}
	}
}
