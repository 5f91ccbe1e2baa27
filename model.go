package translatable

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-translatable/internal/accessor"
	"github.com/goliatone/go-translatable/internal/codec"
	"github.com/goliatone/go-translatable/internal/i18n"
	"github.com/goliatone/go-translatable/internal/keys"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/logging/gologger"
	"github.com/goliatone/go-translatable/internal/query"
	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/internal/schema"
	"github.com/goliatone/go-translatable/pkg/interfaces"
	"github.com/uptrace/bun"
)

type (
	Logger         = interfaces.Logger
	LoggerProvider = interfaces.LoggerProvider
	// Inspector reports column metadata used to classify storage.
	Inspector = schema.Inspector
	Column    = schema.Column
	// Catalog supplies the available locales.
	Catalog = i18n.Catalog
)

// NewStaticInspector returns an inspector backed by an explicit column list.
func NewStaticInspector() *schema.Static {
	return schema.NewStatic()
}

// NewCatalog builds a locale catalog seeded with locales.
func NewCatalog(defaultLocale string, locales ...string) (*Catalog, error) {
	return i18n.NewCatalog(i18n.Config{DefaultLocale: defaultLocale, Locales: locales})
}

// ModelOption customises Declare.
type ModelOption func(*modelOptions)

type modelOptions struct {
	config    Config
	provider  LoggerProvider
	inspector Inspector
	catalog   *Catalog
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) ModelOption {
	return func(o *modelOptions) {
		o.config = cfg
	}
}

// WithLoggerProvider routes module loggers through provider.
func WithLoggerProvider(provider LoggerProvider) ModelOption {
	return func(o *modelOptions) {
		o.provider = provider
	}
}

// WithInspector overrides column introspection.
func WithInspector(inspector Inspector) ModelOption {
	return func(o *modelOptions) {
		o.inspector = inspector
	}
}

// WithCatalog supplies the available locales.
func WithCatalog(catalog *Catalog) ModelOption {
	return func(o *modelOptions) {
		o.catalog = catalog
	}
}

// Model holds the translated attributes declared for record type T, usually
// a pointer to a bun model struct.
type Model[T any] struct {
	db        *bun.DB
	table     *records.Table
	cfg       Config
	provider  LoggerProvider
	attrs     map[string]*Attribute[T]
	order     []string
	accessors map[string]KeyAccessor[T]
}

// Declare binds decls to the columns of T. Every failure is a
// *ConfigurationError; nothing is checked again at access time.
func Declare[T any](ctx context.Context, db *bun.DB, decls []Declaration, opts ...ModelOption) (*Model[T], error) {
	options := modelOptions{config: DefaultConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	cfg := options.config

	var zero T
	modelName := fmt.Sprintf("%T", zero)
	if err := cfg.Validate(); err != nil {
		return nil, newConfigurationError(modelName, "", "", fmt.Sprintf("invalid configuration: %v", err), err)
	}
	if db == nil {
		return nil, newConfigurationError(modelName, "", "", "bun db is required", nil)
	}
	table, err := records.TableOf(db, zero)
	if err != nil {
		return nil, newConfigurationError(modelName, "", "", err.Error(), err)
	}
	modelName = table.ModelName()

	provider, err := resolveProvider(options.provider, cfg)
	if err != nil {
		return nil, newConfigurationError(modelName, table.Name(), "", err.Error(), err)
	}
	catalog, err := resolveCatalog(options.catalog, cfg)
	if err != nil {
		return nil, newConfigurationError(modelName, table.Name(), "", err.Error(), err)
	}
	inspector := options.inspector
	if inspector == nil && cfg.Schema.Introspect {
		inspector = schema.NewCached(schema.NewBunInspector(db))
	}

	model := &Model[T]{
		db:        db,
		table:     table,
		cfg:       cfg,
		provider:  provider,
		attrs:     make(map[string]*Attribute[T], len(decls)),
		accessors: map[string]KeyAccessor[T]{},
	}
	declareLogger := logging.WithAttribute(logging.DeclareLogger(provider), table.Name(), "", "")

	for _, decl := range decls {
		binding, err := model.bind(ctx, decl, inspector, catalog, declareLogger)
		if err != nil {
			declareLogger.Error("translatable.declare.failed", "attribute", decl.attribute, "error", err)
			return nil, err
		}
		if err := model.add(binding); err != nil {
			declareLogger.Error("translatable.declare.failed", "attribute", decl.attribute, "error", err)
			return nil, err
		}
		declareLogger.Info("translatable.declare.bound",
			"attribute", binding.Attribute,
			"domain", binding.Domain.String(),
			"storage", binding.Kind.String(),
			"fallback", binding.Fallback.String(),
			"keys", keys.Strings(binding.Keys),
		)
	}
	return model, nil
}

func (m *Model[T]) bind(ctx context.Context, decl Declaration, inspector Inspector, catalog *Catalog, logger Logger) (accessor.Binding, error) {
	name := decl.attribute
	modelName, tableName := m.table.ModelName(), m.table.Name()
	if name == "" {
		return accessor.Binding{}, newConfigurationError(modelName, tableName, "", "attribute name is required", nil)
	}
	if _, exists := m.attrs[name]; exists {
		return accessor.Binding{}, newConfigurationError(modelName, tableName, name,
			fmt.Sprintf("attribute '%s' declared twice in '%s' model", name, modelName), nil)
	}
	field, ok := m.table.Field(name)
	if !ok {
		return accessor.Binding{}, missingColumnError(modelName, tableName, name)
	}
	if !records.Supports(field.Type) {
		return accessor.Binding{}, newConfigurationError(modelName, tableName, name,
			fmt.Sprintf("field %s.%s has unsupported type %s", modelName, field.GoName, field.Type), nil)
	}
	if field.JSONTagged() && records.EncodesAsJSONString(field.Type) {
		return accessor.Binding{}, newConfigurationError(modelName, tableName, name,
			fmt.Sprintf("field %s.%s is a %s tagged type:%s; bun would store it as a JSON string, use translatable.Values, json.RawMessage or a map",
				modelName, field.GoName, field.Type, field.TaggedSQLType), nil)
	}

	kind := codec.ParseKind(field.SQLType)
	switch {
	case decl.kindSet:
		kind = decl.kind
	case inspector != nil:
		kind = classifyColumn(ctx, inspector, field, tableName, logger)
	}

	binding := accessor.Binding{
		Attribute: name,
		Table:     tableName,
		Model:     modelName,
		Domain:    decl.domain,
		Kind:      kind,
	}
	switch decl.domain {
	case keys.DomainChannel:
		binding.Fallback = normalizeOr(keys.DomainChannel, decl.defaultKey, m.cfg.Channels.Default)
		binding.Keys = keysOr(keys.DomainChannel, decl.keys, m.cfg.Channels.Available)
	default:
		binding.Fallback = normalizeOr(keys.DomainLocale, decl.defaultKey, m.cfg.FallbackLocale)
		if len(decl.keys) > 0 {
			binding.Keys = keys.NormalizeAll(keys.DomainLocale, decl.keys)
		} else {
			binding.Keys = catalog.Locales()
		}
	}
	if err := binding.Validate(); err != nil {
		return accessor.Binding{}, newConfigurationError(modelName, tableName, name,
			fmt.Sprintf("invalid declaration of '%s' in '%s' model: %v", name, modelName, err), err)
	}
	return binding, nil
}

func (m *Model[T]) add(binding accessor.Binding) error {
	resolver := keys.NewResolver(binding.Domain, keys.Normalize(keys.DomainLocale, m.cfg.DefaultLocale), binding.Fallback)
	storeLogger := logging.WithAttribute(logging.StoreLogger(m.provider), binding.Table, binding.Attribute, binding.Kind.String())

	inner, err := accessor.New(binding, m.table, resolver, accessor.WithLogger(storeLogger))
	if err != nil {
		return newConfigurationError(binding.Model, binding.Table, binding.Attribute, err.Error(), err)
	}

	queryLogger := logging.WithAttribute(logging.QueryLogger(m.provider), binding.Table, binding.Attribute, binding.Kind.String())
	builder, builderErr := query.NewBuilder(m.db.Dialect().Name(), binding.Attribute, binding.Kind, query.WithLogger(queryLogger))

	attr := &Attribute[T]{
		inner:      inner,
		builder:    builder,
		builderErr: builderErr,
	}
	m.attrs[binding.Attribute] = attr
	m.order = append(m.order, binding.Attribute)
	for _, acc := range attr.Accessors() {
		if _, taken := m.accessors[acc.Name]; !taken {
			m.accessors[acc.Name] = acc
		}
	}
	return nil
}

// Table returns the SQL table backing T.
func (m *Model[T]) Table() string { return m.table.Name() }

// Config returns the configuration the model was declared with.
func (m *Model[T]) Config() Config { return m.cfg }

// Attr returns the attribute declared as name.
func (m *Model[T]) Attr(name string) (*Attribute[T], bool) {
	attr, ok := m.attrs[strings.TrimSpace(name)]
	return attr, ok
}

// Attributes lists declared attributes in declaration order.
func (m *Model[T]) Attributes() []*Attribute[T] {
	out := make([]*Attribute[T], 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.attrs[name])
	}
	return out
}

// Accessor returns a generated fixed-key accessor such as title_en or
// key_ebay.
func (m *Model[T]) Accessor(name string) (KeyAccessor[T], bool) {
	acc, ok := m.accessors[name]
	return acc, ok
}

// Filters returns the query predicates of attr.
func (m *Model[T]) Filters(attr string) (*Filters, error) {
	attribute, ok := m.Attr(attr)
	if !ok {
		return nil, fmt.Errorf("translatable: attribute %q is not declared on %s", attr, m.table.ModelName())
	}
	return attribute.Filters()
}

// classifyColumn asks the live schema for the storage kind. When the column
// cannot be found or inspected it falls back to the bun tag, and to text when
// the tag names no json type.
func classifyColumn(ctx context.Context, inspector Inspector, field records.Field, table string, logger Logger) codec.Kind {
	col, err := inspector.Column(ctx, table, field.Column)
	if err == nil && col.Exists {
		return codec.Classify(col)
	}
	kind := codec.ParseKind(field.TaggedSQLType)
	fields := []any{"attribute", field.Column, "storage", kind.String()}
	if err != nil {
		fields = append(fields, "error", err)
	}
	logger.Warn("translatable.declare.column_unresolved", fields...)
	return kind
}

func resolveProvider(provider LoggerProvider, cfg Config) (LoggerProvider, error) {
	if provider != nil || !cfg.Features.Logger {
		return provider, nil
	}
	return gologger.NewProvider(gologger.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Focus:     cfg.Logging.Focus,
	})
}

func resolveCatalog(catalog *Catalog, cfg Config) (*Catalog, error) {
	if catalog != nil {
		return catalog, nil
	}
	built, err := i18n.NewCatalog(i18n.Config{DefaultLocale: cfg.DefaultLocale, Locales: cfg.Locales})
	if err != nil {
		return nil, err
	}
	if dir := strings.TrimSpace(cfg.Catalog.Dir); dir != "" {
		if err := built.LoadFS(os.DirFS(dir), "."); err != nil {
			return nil, err
		}
	}
	return built, nil
}

func normalizeOr(domain keys.Domain, value, fallback string) keys.Key {
	if key := keys.Normalize(domain, value); key != "" {
		return key
	}
	return keys.Normalize(domain, fallback)
}

func keysOr(domain keys.Domain, values, fallback []string) []keys.Key {
	if len(values) > 0 {
		return keys.NormalizeAll(domain, values)
	}
	return keys.NormalizeAll(domain, fallback)
}
