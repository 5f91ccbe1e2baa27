package accessor

import (
	"context"
	"fmt"

	"github.com/goliatone/go-translatable/internal/codec"
	"github.com/goliatone/go-translatable/internal/keys"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/internal/translation"
	"github.com/goliatone/go-translatable/internal/values"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// KeyAccessor is the generated getter/setter pair for one fixed key.
type KeyAccessor struct {
	Key  keys.Key
	Name string
	Get  func(ctx context.Context, record any) string
	Set  func(ctx context.Context, record any, value string) error
}

// Attribute binds one declared attribute to its store and record columns.
type Attribute struct {
	binding  Binding
	store    *translation.Store
	resolver keys.Resolver
	columns  records.Columns
	logger   interfaces.Logger

	accessors []KeyAccessor
	byName    map[string]int
	byKey     map[keys.Key]int
}

// Option customises an Attribute.
type Option func(*Attribute)

// WithLogger sets the attribute logger. The store shares it.
func WithLogger(logger interfaces.Logger) Option {
	return func(a *Attribute) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New validates binding and generates its accessors.
func New(binding Binding, columns records.Columns, resolver keys.Resolver, opts ...Option) (*Attribute, error) {
	if err := binding.Validate(); err != nil {
		return nil, err
	}
	if columns == nil {
		return nil, fmt.Errorf("accessor: columns collaborator is required for %s", binding.Attribute)
	}
	attr := &Attribute{
		binding:  binding,
		resolver: resolver,
		columns:  columns,
		logger:   logging.NoOp(),
		byName:   make(map[string]int, len(binding.Keys)),
		byKey:    make(map[keys.Key]int, len(binding.Keys)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(attr)
		}
	}
	attr.store = translation.NewStore(binding.Domain, binding.Fallback, codec.ForKind(binding.Kind), translation.WithLogger(attr.logger))
	attr.generate()
	return attr, nil
}

func (a *Attribute) generate() {
	for _, key := range a.binding.Keys {
		name := a.binding.AccessorName(key)
		if _, exists := a.byName[name]; exists {
			continue
		}
		a.byName[name] = len(a.accessors)
		a.byKey[key] = len(a.accessors)
		a.accessors = append(a.accessors, KeyAccessor{
			Key:  key,
			Name: name,
			Get: func(ctx context.Context, record any) string {
				value, _ := a.store.Lookup(a.raw(record), a.scope(ctx, record), key)
				return value
			},
			Set: func(ctx context.Context, record any, value string) error {
				return a.put(record, a.store.WriteKey(a.raw(record), a.scope(ctx, record), key, value))
			},
		})
	}
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.binding.Attribute }

// Binding returns the declaration-time configuration.
func (a *Attribute) Binding() Binding {
	out := a.binding
	out.Keys = append([]keys.Key(nil), a.binding.Keys...)
	return out
}

// CurrentKey resolves the active key for ctx.
func (a *Attribute) CurrentKey(ctx context.Context) keys.Key {
	return a.resolver.Current(ctx)
}

// Get resolves the value for the active key.
func (a *Attribute) Get(ctx context.Context, record any) string {
	return a.For(ctx, record, string(a.CurrentKey(ctx)))
}

// Set merges a scalar value at the active key.
func (a *Attribute) Set(ctx context.Context, record any, value string) error {
	return a.put(record, a.store.Write(a.raw(record), a.scope(ctx, record), value))
}

// Assign writes a scalar at the active key or, for mappings, replaces the
// whole mapping.
func (a *Attribute) Assign(ctx context.Context, record any, value any) error {
	switch v := value.(type) {
	case string:
		return a.Set(ctx, record, v)
	case *string:
		if v == nil {
			return a.Set(ctx, record, "")
		}
		return a.Set(ctx, record, *v)
	case values.Values:
		return a.SetData(record, v)
	case map[string]string:
		return a.SetData(record, values.FromMap(v))
	case map[string]any:
		return a.SetData(record, codec.ForKind(codec.KindJSON).Decode(v))
	default:
		return fmt.Errorf("accessor: cannot assign %T to %s", value, a.binding.Attribute)
	}
}

// Data returns the full mapping.
func (a *Attribute) Data(ctx context.Context, record any) values.Values {
	return a.store.Read(a.raw(record), a.scope(ctx, record))
}

// SetData replaces the whole mapping.
func (a *Attribute) SetData(record any, mapping values.Values) error {
	return a.put(record, a.store.Replace(mapping))
}

// For resolves key through the fallback chain.
func (a *Attribute) For(ctx context.Context, record any, key string) string {
	value, _ := a.Lookup(ctx, record, key)
	return value
}

// DataFor is an alias of For.
func (a *Attribute) DataFor(ctx context.Context, record any, key string) string {
	return a.For(ctx, record, key)
}

// Lookup is For with a presence flag.
func (a *Attribute) Lookup(ctx context.Context, record any, key string) (string, bool) {
	return a.store.Lookup(a.raw(record), a.scope(ctx, record), a.store.Normalize(key))
}

// SetFor merges {key: value} independently of the active key.
func (a *Attribute) SetFor(ctx context.Context, record any, key string, value string) error {
	normalized := a.store.Normalize(key)
	if normalized == "" {
		return fmt.Errorf("accessor: empty key for %s", a.binding.Attribute)
	}
	return a.put(record, a.store.WriteKey(a.raw(record), a.scope(ctx, record), normalized, value))
}

// Key returns the fixed accessor for key.
func (a *Attribute) Key(key string) (KeyAccessor, bool) {
	idx, ok := a.byKey[a.store.Normalize(key)]
	if !ok {
		return KeyAccessor{}, false
	}
	return a.accessors[idx], true
}

// Accessor returns the fixed accessor registered under a generated name.
func (a *Attribute) Accessor(name string) (KeyAccessor, bool) {
	idx, ok := a.byName[name]
	if !ok {
		return KeyAccessor{}, false
	}
	return a.accessors[idx], true
}

// Accessors lists every generated fixed-key accessor in declaration order.
func (a *Attribute) Accessors() []KeyAccessor {
	return append([]KeyAccessor(nil), a.accessors...)
}

// Raw returns the stored column value untouched.
func (a *Attribute) Raw(record any) (any, error) {
	return a.columns.Get(record, a.binding.Attribute)
}

func (a *Attribute) scope(ctx context.Context, record any) translation.Scope {
	return translation.Scope{
		Current: a.CurrentKey(ctx),
		IsNew:   a.columns.IsNew(record),
	}
}

func (a *Attribute) raw(record any) any {
	raw, err := a.columns.Get(record, a.binding.Attribute)
	if err != nil {
		a.logger.Warn("translatable.attribute.read_failed", "attribute", a.binding.Attribute, "error", err)
		return nil
	}
	return raw
}

func (a *Attribute) put(record any, raw any) error {
	if err := a.columns.Set(record, a.binding.Attribute, raw); err != nil {
		return fmt.Errorf("accessor: write %s: %w", a.binding.Attribute, err)
	}
	return nil
}
