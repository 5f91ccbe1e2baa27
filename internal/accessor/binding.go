package accessor

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-translatable/internal/codec"
	"github.com/goliatone/go-translatable/internal/keys"
)

// Binding is the immutable per-attribute configuration shared by every
// record of a model.
type Binding struct {
	// Attribute is the declared attribute name. It doubles as the column name.
	Attribute string
	// Table is the SQL table backing the model.
	Table string
	// Model is the Go type name, used in diagnostics.
	Model string
	// Domain selects locale or channel keys.
	Domain keys.Domain
	// Fallback is consulted when the requested key resolves empty.
	Fallback keys.Key
	// Keys lists the keys that receive fixed accessors such as title_en.
	Keys []keys.Key
	// Kind is the storage classification resolved at declaration time.
	Kind codec.Kind
}

// Validate checks the binding before any accessor is generated.
func (b Binding) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Attribute, validation.Required, validation.By(func(value any) error {
			name, _ := value.(string)
			if strings.TrimSpace(name) != name || strings.ContainsAny(name, " .\"'`") {
				return validation.NewError("translatable.binding.attribute_invalid", "attribute must be a bare column name")
			}
			return nil
		})),
		validation.Field(&b.Fallback, validation.Required.ErrorObject(
			validation.NewError("translatable.binding.fallback_required", "fallback key is required"),
		)),
		validation.Field(&b.Keys, validation.Required.ErrorObject(
			validation.NewError("translatable.binding.keys_required", "at least one key is required"),
		), validation.Each(validation.Required)),
	)
}

// AccessorName renders the generated accessor name for key, e.g. title_en or
// title_pt_br.
func (b Binding) AccessorName(key keys.Key) string {
	suffix := strings.ToLower(strings.ReplaceAll(string(key), "-", "_"))
	return b.Attribute + "_" + suffix
}
