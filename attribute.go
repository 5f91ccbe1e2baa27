package translatable

import (
	"context"

	"github.com/goliatone/go-translatable/internal/accessor"
	"github.com/goliatone/go-translatable/internal/keys"
	"github.com/goliatone/go-translatable/internal/query"
	"github.com/goliatone/go-translatable/internal/validation"
	"github.com/goliatone/go-translatable/internal/values"
)

// Values is the ordered key to string mapping behind a translated attribute.
type Values = values.Values

// Predicate narrows a bun select query.
type Predicate = query.Predicate

// FromPairs builds Values from alternating key/value arguments.
func FromPairs(pairs ...string) Values {
	return values.FromPairs(pairs...)
}

// FromMap builds Values from a Go map with keys sorted.
func FromMap(src map[string]string) Values {
	return values.FromMap(src)
}

// WithLocale returns ctx carrying the active locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	return keys.WithLocale(ctx, locale)
}

// WithChannel returns ctx carrying the active sales channel.
func WithChannel(ctx context.Context, channel string) context.Context {
	return keys.WithChannel(ctx, channel)
}

// KeyAccessor is a generated fixed-key getter/setter such as title_en.
type KeyAccessor[T any] struct {
	Attribute string
	Key       string
	Name      string
	get       func(context.Context, any) string
	set       func(context.Context, any, string) error
}

// Get reads the fixed key through the fallback chain.
func (k KeyAccessor[T]) Get(ctx context.Context, record T) string {
	return k.get(ctx, record)
}

// Set merges the fixed key into the mapping.
func (k KeyAccessor[T]) Set(ctx context.Context, record T, value string) error {
	return k.set(ctx, record, value)
}

// Attribute exposes the operations of one declared attribute for records of
// type T. Setters need T to be a pointer.
type Attribute[T any] struct {
	inner      *accessor.Attribute
	builder    *query.Builder
	builderErr error
}

// Name returns the attribute name.
func (a *Attribute[T]) Name() string { return a.inner.Name() }

// Kind returns the storage classification resolved at declaration.
func (a *Attribute[T]) Kind() StorageKind { return a.inner.Binding().Kind }

// Fallback returns the fallback key.
func (a *Attribute[T]) Fallback() string { return a.inner.Binding().Fallback.String() }

// Keys lists the keys with fixed accessors.
func (a *Attribute[T]) Keys() []string { return keys.Strings(a.inner.Binding().Keys) }

// CurrentKey resolves the active key for ctx.
func (a *Attribute[T]) CurrentKey(ctx context.Context) string {
	return a.inner.CurrentKey(ctx).String()
}

// Get returns the value for the active key.
func (a *Attribute[T]) Get(ctx context.Context, record T) string {
	return a.inner.Get(ctx, record)
}

// Set merges value at the active key.
func (a *Attribute[T]) Set(ctx context.Context, record T, value string) error {
	return a.inner.Set(ctx, record, value)
}

// Assign accepts a scalar (merged at the active key) or a mapping (full
// replacement).
func (a *Attribute[T]) Assign(ctx context.Context, record T, value any) error {
	return a.inner.Assign(ctx, record, value)
}

// Data returns the full mapping.
func (a *Attribute[T]) Data(ctx context.Context, record T) Values {
	return a.inner.Data(ctx, record)
}

// SetData replaces the full mapping.
func (a *Attribute[T]) SetData(record T, mapping Values) error {
	return a.inner.SetData(record, mapping)
}

// For resolves key: the key itself, then the fallback key, then the first
// non-empty value.
func (a *Attribute[T]) For(ctx context.Context, record T, key string) string {
	return a.inner.For(ctx, record, key)
}

// DataFor is an alias of For.
func (a *Attribute[T]) DataFor(ctx context.Context, record T, key string) string {
	return a.inner.DataFor(ctx, record, key)
}

// Lookup is For with a presence flag.
func (a *Attribute[T]) Lookup(ctx context.Context, record T, key string) (string, bool) {
	return a.inner.Lookup(ctx, record, key)
}

// SetFor merges {key: value} regardless of the active key.
func (a *Attribute[T]) SetFor(ctx context.Context, record T, key, value string) error {
	return a.inner.SetFor(ctx, record, key, value)
}

// Key returns the fixed accessor for key.
func (a *Attribute[T]) Key(key string) (KeyAccessor[T], bool) {
	acc, ok := a.inner.Key(key)
	if !ok {
		return KeyAccessor[T]{}, false
	}
	return a.wrap(acc), true
}

// Accessors lists the fixed accessors in declaration order.
func (a *Attribute[T]) Accessors() []KeyAccessor[T] {
	inner := a.inner.Accessors()
	out := make([]KeyAccessor[T], 0, len(inner))
	for _, acc := range inner {
		out = append(out, a.wrap(acc))
	}
	return out
}

// Check validates the stored document of record against the translation
// document schema. Reads never call it.
func (a *Attribute[T]) Check(record T, strictKeys bool) error {
	var opts []validation.Option
	if strictKeys {
		opts = append(opts, validation.WithAllowedKeys(a.Keys()...))
	}
	validator, err := validation.NewValidator(opts...)
	if err != nil {
		return err
	}
	raw, err := a.inner.Raw(record)
	if err != nil {
		return err
	}
	return validator.Validate(raw)
}

// Filters returns the query predicates for this attribute.
func (a *Attribute[T]) Filters() (*Filters, error) {
	if a.builderErr != nil {
		return nil, a.builderErr
	}
	return &Filters{attr: a.inner, builder: a.builder}, nil
}

func (a *Attribute[T]) wrap(acc accessor.KeyAccessor) KeyAccessor[T] {
	return KeyAccessor[T]{
		Attribute: a.inner.Name(),
		Key:       acc.Key.String(),
		Name:      acc.Name,
		get:       acc.Get,
		set:       acc.Set,
	}
}

// Filters builds the named filters of one attribute: contains-value,
// contains-substring, and exact-for-key.
type Filters struct {
	attr    *accessor.Attribute
	builder *query.Builder
}

// WithValue matches records where any key holds exactly value.
func (f *Filters) WithValue(value string) Predicate {
	return f.builder.ContainsValue(value)
}

// WithSubstring matches records where any value contains value.
func (f *Filters) WithSubstring(value string) Predicate {
	return f.builder.ContainsSubstring(value)
}

// WithValueFor matches records whose value at key equals value. key defaults
// to the active key of ctx.
func (f *Filters) WithValueFor(ctx context.Context, value string, key ...string) Predicate {
	target := f.attr.CurrentKey(ctx)
	if len(key) > 0 {
		if normalized := keys.Normalize(f.attr.Binding().Domain, key[0]); normalized != "" {
			target = normalized
		}
	}
	return f.builder.ExactFor(value, target.String())
}
