package query

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-translatable/internal/codec"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/values"
	"github.com/goliatone/go-translatable/pkg/interfaces"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// ErrUnsupportedDialect is returned for databases other than postgres and
// sqlite.
var ErrUnsupportedDialect = errors.New("query: unsupported dialect")

// Predicate narrows a select query. It plugs into
// repository.SelectRawProcessor.
type Predicate func(*bun.SelectQuery) *bun.SelectQuery

// Builder produces filter predicates for one attribute column.
//
// Text columns are matched by substring against the serialized document, so
// a value that appears inside another value or key can produce a false
// positive. JSON columns are matched per entry.
type Builder struct {
	dialect dialect.Name
	column  string
	kind    codec.Kind
	alias   string
	logger  interfaces.Logger
}

// Option customises a Builder.
type Option func(*Builder)

// WithTableAlias qualifies the column with alias instead of the model alias.
// Use it for queries built without a model.
func WithTableAlias(alias string) Option {
	return func(b *Builder) {
		b.alias = alias
	}
}

// WithLogger sets the builder logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder returns a builder for column stored as kind.
func NewBuilder(name dialect.Name, column string, kind codec.Kind, opts ...Option) (*Builder, error) {
	switch name {
	case dialect.PG, dialect.SQLite:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, name)
	}
	b := &Builder{
		dialect: name,
		column:  column,
		kind:    kind,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Kind reports the storage kind the builder targets.
func (b *Builder) Kind() codec.Kind { return b.kind }

// ContainsValue matches rows where any key holds exactly value.
func (b *Builder) ContainsValue(value string) Predicate {
	if b.kind == codec.KindText {
		fragment := `":` + string(values.Quote(value))
		return b.textContains("contains_value", fragment)
	}
	col, args := b.columnExpr()
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		switch b.dialect {
		case dialect.PG:
			return q.Where("EXISTS (SELECT 1 FROM jsonb_each_text("+col+"::jsonb) AS kv WHERE kv.value = ?)", append(args, value)...)
		default:
			return q.Where("EXISTS (SELECT 1 FROM json_each("+col+") WHERE json_each.value = ?)", append(args, value)...)
		}
	}
}

// ContainsSubstring matches rows where any value contains value.
func (b *Builder) ContainsSubstring(value string) Predicate {
	if b.kind == codec.KindText {
		quoted := values.Quote(value)
		fragment := string(quoted[1 : len(quoted)-1])
		return b.textContains("contains_substring", fragment)
	}
	col, args := b.columnExpr()
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		switch b.dialect {
		case dialect.PG:
			return q.Where("EXISTS (SELECT 1 FROM jsonb_each_text("+col+"::jsonb) AS kv WHERE strpos(kv.value, ?) > 0)", append(args, value)...)
		default:
			return q.Where("EXISTS (SELECT 1 FROM json_each("+col+") WHERE instr(json_each.value, ?) > 0)", append(args, value)...)
		}
	}
}

// ExactFor matches rows whose value at key equals value.
func (b *Builder) ExactFor(value, key string) Predicate {
	if b.kind == codec.KindText {
		fragment := string(values.Quote(key)) + ":" + string(values.Quote(value))
		return b.textContains("exact_for_key", fragment)
	}
	col, args := b.columnExpr()
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		switch b.dialect {
		case dialect.PG:
			return q.Where("("+col+"::jsonb ->> ?) = ?", append(args, key, value)...)
		default:
			return q.Where("EXISTS (SELECT 1 FROM json_each("+col+") WHERE json_each.key = ? AND json_each.value = ?)", append(args, key, value)...)
		}
	}
}

func (b *Builder) textContains(op, fragment string) Predicate {
	b.logger.Debug("translatable.query.approximate_match",
		"column", b.column,
		"op", op,
		"storage", codec.KindText.String(),
	)
	col, args := b.columnExpr()
	fn := "instr"
	if b.dialect == dialect.PG {
		fn = "strpos"
	}
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(fn+"("+col+", ?) > 0", append(args, fragment)...)
	}
}

// columnExpr returns the qualified column placeholder and its arguments. The
// returned slice is fresh on every call so predicates can append to it.
func (b *Builder) columnExpr() (string, []any) {
	if b.alias != "" {
		return "?.?", []any{bun.Ident(b.alias), bun.Ident(b.column)}
	}
	return "?TableAlias.?", []any{bun.Ident(b.column)}
}
