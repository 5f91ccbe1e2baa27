package translatable

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Collection is the query sink of a model: named translated filters plus
// record lookup and persistence through go-repository-bun.
type Collection[T any] struct {
	model        *Model[T]
	handlers     repository.ModelHandlers[T]
	base         repository.Repository[T]
	repo         repository.Repository[T]
	cacheService cache.CacheService
	cachePrefix  string
	logger       interfaces.Logger
}

// CollectionOption customises a Collection.
type CollectionOption func(*collectionOptions)

type collectionOptions struct {
	cacheService cache.CacheService
	serializer   cache.KeySerializer
}

// WithCache routes Find through a go-repository-cache read-through cache.
func WithCache(service cache.CacheService, serializer cache.KeySerializer) CollectionOption {
	return func(o *collectionOptions) {
		o.cacheService = service
		o.serializer = serializer
	}
}

// NewCollection wires a repository for T. When the model config enables the
// cache and no cache is supplied, a default in-memory one is built.
func NewCollection[T any](model *Model[T], handlers repository.ModelHandlers[T], opts ...CollectionOption) (*Collection[T], error) {
	if model == nil {
		return nil, fmt.Errorf("translatable: collection requires a declared model")
	}
	options := collectionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.cacheService == nil && model.cfg.Cache.Enabled {
		cfg := cache.DefaultConfig()
		if model.cfg.Cache.TTL > 0 {
			cfg.TTL = model.cfg.Cache.TTL
		}
		service, err := cache.NewCacheService(cfg)
		if err != nil {
			return nil, fmt.Errorf("translatable: cache service: %w", err)
		}
		options.cacheService = service
	}
	if options.cacheService != nil && options.serializer == nil {
		options.serializer = cache.NewDefaultKeySerializer()
	}

	base := repository.MustNewRepository(model.db, handlers)
	coll := &Collection[T]{
		model:    model,
		handlers: handlers,
		base:     base,
		repo:     base,
		logger:   logging.WithAttribute(logging.CollectionLogger(model.provider), model.Table(), "", ""),
	}
	if options.cacheService != nil {
		coll.repo = repositorycache.New(base, options.cacheService, options.serializer)
		coll.cacheService = options.cacheService
		coll.cachePrefix = model.Table() + cache.KeySeparator
	}
	return coll, nil
}

// WithValue returns records where any key of attr holds exactly value.
func (c *Collection[T]) WithValue(ctx context.Context, attr, value string) ([]T, error) {
	filters, err := c.model.Filters(attr)
	if err != nil {
		return nil, err
	}
	return c.Where(ctx, filters.WithValue(value))
}

// WithSubstring returns records where any value of attr contains value.
func (c *Collection[T]) WithSubstring(ctx context.Context, attr, value string) ([]T, error) {
	filters, err := c.model.Filters(attr)
	if err != nil {
		return nil, err
	}
	return c.Where(ctx, filters.WithSubstring(value))
}

// WithValueFor returns records whose attr value at key equals value. key
// defaults to the active key of ctx.
func (c *Collection[T]) WithValueFor(ctx context.Context, attr, value string, key ...string) ([]T, error) {
	filters, err := c.model.Filters(attr)
	if err != nil {
		return nil, err
	}
	return c.Where(ctx, filters.WithValueFor(ctx, value, key...))
}

// Where lists records matching every predicate. Filters always bypass the
// cache; predicates are closures and have no stable cache key.
func (c *Collection[T]) Where(ctx context.Context, preds ...Predicate) ([]T, error) {
	criteria := make([]repository.SelectCriteria, 0, len(preds))
	for _, pred := range preds {
		if pred == nil {
			continue
		}
		criteria = append(criteria, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return pred(q)
		}))
	}
	records, _, err := c.base.List(ctx, criteria...)
	if err != nil {
		c.logger.Error("translatable.collection.list_failed", "error", err)
		return nil, fmt.Errorf("%s repository error: %w", c.model.Table(), err)
	}
	c.logger.Debug("translatable.collection.listed", "predicates", len(criteria), "count", len(records))
	return records, nil
}

// Find loads a record by id.
func (c *Collection[T]) Find(ctx context.Context, id string) (T, error) {
	record, err := c.repo.GetByID(ctx, id)
	if err != nil {
		var zero T
		return zero, mapRepositoryError(err, c.model.Table(), id)
	}
	return record, nil
}

// Save creates new records and updates persisted ones.
func (c *Collection[T]) Save(ctx context.Context, record T) (T, error) {
	var (
		saved T
		err   error
	)
	if c.model.table.IsNew(record) {
		if c.handlers.GetID != nil && c.handlers.SetID != nil && c.handlers.GetID(record) == uuid.Nil {
			c.handlers.SetID(record, uuid.New())
		}
		saved, err = c.repo.Create(ctx, record)
	} else {
		saved, err = c.repo.Update(ctx, record)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s repository error: %w", c.model.Table(), err)
	}
	if err := c.InvalidateCache(ctx); err != nil {
		c.logger.Warn("translatable.collection.cache_invalidate_failed", "error", err)
	}
	return saved, nil
}

// InvalidateCache drops cached lookups of this collection.
func (c *Collection[T]) InvalidateCache(ctx context.Context) error {
	if c.cacheService == nil || c.cachePrefix == "" {
		return nil
	}
	return c.cacheService.DeleteByPrefix(ctx, c.cachePrefix)
}
