package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/goliatone/go-translatable/internal/keys"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// Config seeds a catalog with the locales the application declares up front.
type Config struct {
	DefaultLocale string
	Locales       []string
}

// Catalog tracks the available locales: the declared ones plus every locale
// that has message files loaded. It is the default key domain for
// locale-keyed attributes.
type Catalog struct {
	bundle        *i18n.Bundle
	defaultLocale keys.Key
	declared      []keys.Key
}

// NewCatalog builds a catalog backed by a go-i18n bundle.
func NewCatalog(cfg Config) (*Catalog, error) {
	defaultLocale := strings.TrimSpace(cfg.DefaultLocale)
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n: default locale %q: %w", cfg.DefaultLocale, err)
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	return &Catalog{
		bundle:        bundle,
		defaultLocale: keys.Normalize(keys.DomainLocale, defaultLocale),
		declared:      keys.NormalizeAll(keys.DomainLocale, cfg.Locales),
	}, nil
}

// LoadFS loads every *.toml message file under dir. File names carry the
// locale, e.g. active.fr.toml.
func (c *Catalog) LoadFS(fsys fs.FS, dir string) error {
	if dir == "" {
		dir = "."
	}
	matches, err := fs.Glob(fsys, path.Join(dir, "*.toml"))
	if err != nil {
		return fmt.Errorf("i18n: glob %s: %w", dir, err)
	}
	for _, file := range matches {
		if _, err := c.bundle.LoadMessageFileFS(fsys, file); err != nil {
			return fmt.Errorf("i18n: load %s: %w", file, err)
		}
	}
	return nil
}

// DefaultLocale returns the catalog default locale.
func (c *Catalog) DefaultLocale() keys.Key { return c.defaultLocale }

// Locales lists available locales: declared ones first, then loaded ones.
func (c *Catalog) Locales() []keys.Key {
	raw := keys.Strings(c.declared)
	for _, tag := range c.bundle.LanguageTags() {
		raw = append(raw, tag.String())
	}
	return keys.NormalizeAll(keys.DomainLocale, raw)
}
