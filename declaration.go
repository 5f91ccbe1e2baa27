package translatable

import (
	"strings"

	"github.com/goliatone/go-translatable/internal/codec"
	"github.com/goliatone/go-translatable/internal/keys"
)

// StorageKind classifies how a column stores the translated mapping.
type StorageKind = codec.Kind

const (
	// StorageText columns hold the mapping as a JSON-encoded string.
	StorageText = codec.KindText
	// StorageJSON columns hold the mapping natively (json/jsonb).
	StorageJSON = codec.KindJSON
)

// Declaration describes one translated attribute of a model.
type Declaration struct {
	attribute  string
	domain     keys.Domain
	defaultKey string
	keys       []string
	kind       StorageKind
	kindSet    bool
}

// DeclarationOption customises a Declaration.
type DeclarationOption func(*Declaration)

// Translatable declares a locale-keyed attribute. Its fallback defaults to the
// configured fallback locale and its keys to the available locales.
func Translatable(attribute string, opts ...DeclarationOption) Declaration {
	return newDeclaration(attribute, keys.DomainLocale, opts)
}

// SalesDatable declares a channel-keyed attribute. Its default key, used both
// as fallback and as the active key when no channel is set, defaults to the
// configured default channel; its keys default to the available channels.
func SalesDatable(attribute string, opts ...DeclarationOption) Declaration {
	return newDeclaration(attribute, keys.DomainChannel, opts)
}

func newDeclaration(attribute string, domain keys.Domain, opts []DeclarationOption) Declaration {
	decl := Declaration{
		attribute: strings.TrimSpace(attribute),
		domain:    domain,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&decl)
		}
	}
	return decl
}

// WithDefaultKey sets the fallback key (and, for channel attributes, the
// default active key).
func WithDefaultKey(key string) DeclarationOption {
	return func(d *Declaration) {
		d.defaultKey = key
	}
}

// WithKeys sets the keys that receive fixed accessors.
func WithKeys(keys ...string) DeclarationOption {
	return func(d *Declaration) {
		d.keys = append([]string(nil), keys...)
	}
}

// WithStorageKind classifies the column explicitly, skipping introspection.
func WithStorageKind(kind StorageKind) DeclarationOption {
	return func(d *Declaration) {
		d.kind = kind
		d.kindSet = true
	}
}

// Attribute returns the declared attribute name.
func (d Declaration) Attribute() string { return d.attribute }
