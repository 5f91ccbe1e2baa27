package translation

import (
	"github.com/goliatone/go-translatable/internal/codec"
	"github.com/goliatone/go-translatable/internal/keys"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/values"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Scope carries the per-call facts the store needs about the record: the
// active key and whether the record has been persisted yet.
type Scope struct {
	Current keys.Key
	IsNew   bool
}

// Store reads, resolves, and merges the translated mapping of one attribute.
// It holds no record state; every call works from the raw column value.
type Store struct {
	domain   keys.Domain
	fallback keys.Key
	codec    codec.Codec
	logger   interfaces.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore builds a store for a key domain, fallback key, and column codec.
func NewStore(domain keys.Domain, fallback keys.Key, c codec.Codec, opts ...Option) *Store {
	if c == nil {
		c = codec.ForKind(codec.KindText)
	}
	s := &Store{
		domain:   domain,
		fallback: fallback,
		codec:    c,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Kind reports the storage kind of the underlying codec.
func (s *Store) Kind() codec.Kind { return s.codec.Kind() }

// Fallback reports the fallback key.
func (s *Store) Fallback() keys.Key { return s.fallback }

// Normalize canonicalises a caller supplied key for this store's domain.
func (s *Store) Normalize(key string) keys.Key {
	return keys.Normalize(s.domain, key)
}

// Read materialises the mapping from raw. Empty content yields
// {current: ""} for new records and {} for persisted ones.
func (s *Store) Read(raw any, scope Scope) values.Values {
	decoded := s.normalizeValues(s.codec.Decode(raw))
	if decoded.Len() > 0 {
		return decoded
	}
	if !isBlank(raw) {
		s.logger.Debug("translation.store.normalized_empty", "storage", s.codec.Kind().String())
	}
	var out values.Values
	if scope.IsNew && scope.Current != "" {
		out.Set(scope.Current, "")
	}
	return out
}

// Lookup resolves key against raw: the key itself, then the fallback key,
// then the first non-empty value in mapping order. Empty strings never
// satisfy a step. The boolean is false when nothing qualifies.
func (s *Store) Lookup(raw any, scope Scope, key keys.Key) (string, bool) {
	return Resolve(s.Read(raw, scope), key, s.fallback)
}

// ValueFor is Lookup without the presence flag.
func (s *Store) ValueFor(raw any, scope Scope, key keys.Key) string {
	value, _ := s.Lookup(raw, scope, key)
	return value
}

// Write merges a scalar value at the active key, leaving other keys intact,
// and returns the new raw value.
func (s *Store) Write(raw any, scope Scope, value string) any {
	return s.WriteKey(raw, scope, scope.Current, value)
}

// WriteKey merges {key: value} into the existing mapping independently of the
// active key and returns the new raw value.
func (s *Store) WriteKey(raw any, scope Scope, key keys.Key, value string) any {
	current := s.Read(raw, scope)
	if key == "" {
		return s.codec.Encode(current)
	}
	current.Set(key, value)
	return s.codec.Encode(current)
}

// Replace swaps the whole mapping for next after key normalisation.
func (s *Store) Replace(next values.Values) any {
	return s.codec.Encode(s.normalizeValues(next))
}

// Resolve applies the fallback chain to an already materialised mapping.
func Resolve(mapping values.Values, key, fallback keys.Key) (string, bool) {
	if value, ok := mapping.Get(key); ok && value != "" {
		return value, true
	}
	if value, ok := mapping.Get(fallback); ok && value != "" {
		return value, true
	}
	var (
		found string
		ok    bool
	)
	mapping.Each(func(_ keys.Key, value string) bool {
		if value == "" {
			return true
		}
		found, ok = value, true
		return false
	})
	return found, ok
}

func (s *Store) normalizeValues(in values.Values) values.Values {
	var out values.Values
	in.Each(func(key keys.Key, value string) bool {
		normalized := keys.Normalize(s.domain, string(key))
		if normalized == "" {
			return true
		}
		out.Set(normalized, value)
		return true
	})
	return out
}

func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == "" || v == "{}"
	case *string:
		return v == nil || *v == "" || *v == "{}"
	case []byte:
		return len(v) == 0 || string(v) == "{}"
	case values.Values:
		return v.Len() == 0
	case *values.Values:
		return v == nil || v.Len() == 0
	default:
		return false
	}
}
