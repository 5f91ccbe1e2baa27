package schema

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrUnsupportedDialect indicates the database dialect has no introspection query.
var ErrUnsupportedDialect = errors.New("schema: unsupported dialect for column introspection")

// Column describes a storage column as reported by the schema collaborator.
// Type is the raw database type name and may be empty when unknown.
type Column struct {
	Table  string
	Name   string
	Type   string
	Exists bool
}

// Inspector answers column metadata questions. It is consulted once per
// declared attribute; callers cache the result on the binding.
type Inspector interface {
	Column(ctx context.Context, table, column string) (Column, error)
}

// Static is an Inspector backed by an explicit table/column/type listing.
type Static struct {
	mu      sync.RWMutex
	columns map[string]map[string]string
}

// NewStatic constructs an empty static inspector.
func NewStatic() *Static {
	return &Static{columns: map[string]map[string]string{}}
}

// Add registers a column and its database type.
func (s *Static) Add(table, column, sqlType string) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	table = normalizeName(table)
	if s.columns[table] == nil {
		s.columns[table] = map[string]string{}
	}
	s.columns[table][normalizeName(column)] = strings.TrimSpace(sqlType)
	return s
}

// Column implements Inspector.
func (s *Static) Column(_ context.Context, table, column string) (Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col := Column{Table: table, Name: column}
	sqlType, ok := s.columns[normalizeName(table)][normalizeName(column)]
	if !ok {
		return col, nil
	}
	col.Type = sqlType
	col.Exists = true
	return col, nil
}

// Cached memoizes another inspector's answers. Errors are not cached.
type Cached struct {
	next    Inspector
	mu      sync.Mutex
	results map[string]Column
}

// NewCached wraps next with a result cache.
func NewCached(next Inspector) *Cached {
	return &Cached{next: next, results: map[string]Column{}}
}

// Column implements Inspector.
func (c *Cached) Column(ctx context.Context, table, column string) (Column, error) {
	cacheKey := normalizeName(table) + "." + normalizeName(column)

	c.mu.Lock()
	if cached, ok := c.results[cacheKey]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	col, err := c.next.Column(ctx, table, column)
	if err != nil {
		return col, err
	}

	c.mu.Lock()
	c.results[cacheKey] = col
	c.mu.Unlock()
	return col, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
