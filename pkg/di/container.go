package di

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-query-cache/bunrepo"
	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/internal/cacheinfra"
	"github.com/goliatone/go-query-cache/querycache"
)

// Container wires a cache.Config into a ready pipeline: it builds the
// backing store named by the storage descriptor, the key serializer, and
// the interception pipeline, and hands out cached repositories bound to
// that pipeline.
type Container struct {
	config     cache.Config
	store      cache.CacheService
	serializer cache.KeySerializer
	pipeline   *querycache.Pipeline
}

// NewContainer validates cfg and assembles the cache stack. The memory
// driver (the default) uses the in-process sturdyc store; the redis driver
// dials the configured address.
func NewContainer(cfg cache.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	serializer := cache.NewDefaultKeySerializer()
	return &Container{
		config:     cfg,
		store:      store,
		serializer: serializer,
		pipeline:   querycache.New(cfg, store, serializer),
	}, nil
}

func buildStore(cfg cache.Config) (cache.CacheService, error) {
	switch cfg.Storage.Driver {
	case cache.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Addr,
			Password: cfg.Storage.Password,
			DB:       cfg.Storage.DB,
		})
		return cacheinfra.NewRedisStore(client, cfg.Storage.Prefix, cfg.Transformer, cfg.Hooks, cfg.Logger)
	case cache.DriverMemory, "":
		return cacheinfra.NewSturdycStore(cacheinfra.DefaultConfig(), cfg.Hooks)
	default:
		return nil, &cache.ConfigError{Field: "Storage.Driver", Message: "unknown driver " + string(cfg.Storage.Driver)}
	}
}

// Pipeline returns the shared interception pipeline.
func (c *Container) Pipeline() *querycache.Pipeline {
	return c.pipeline
}

// CacheService returns the backing store, for advanced use.
func (c *Container) CacheService() cache.CacheService {
	return c.store
}

// KeySerializer returns the serializer used for call keys.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.serializer
}

// Config returns a copy of the configuration the container was built from.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewCachedRepository wraps base with caching through the container's
// pipeline, deriving the model name from T.
//
// Go methods cannot take type parameters, so this is a package-level
// function: NewCachedRepository[User](container, baseUserRepository).
func NewCachedRepository[T any](container *Container, base repository.Repository[T]) *bunrepo.CachedRepository[T] {
	return bunrepo.New(base, container.pipeline)
}

// NewCachedRepositoryWithModel wraps base under an explicit model name so
// it lines up with the names used in ModelRules.
func NewCachedRepositoryWithModel[T any](container *Container, base repository.Repository[T], model string) *bunrepo.CachedRepository[T] {
	return bunrepo.NewWithModel(base, container.pipeline, model)
}
