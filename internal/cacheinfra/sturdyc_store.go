package cacheinfra

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-query-cache/cache"
)

// Config holds the tuning knobs for the in-process sturdyc store.
type Config struct {
	// Capacity is the maximum number of entries per TTL shard.
	// Must be greater than 0.
	Capacity int

	// NumShards determines sturdyc's internal shard count per client.
	// Must be greater than 0.
	NumShards int

	// EvictionPercentage is the share of entries evicted when a shard is
	// full. Must be between 1 and 100.
	EvictionPercentage int

	// EarlyRefresh configures sturdyc's stampede-protecting background
	// refreshes. Nil disables them.
	EarlyRefresh *EarlyRefreshConfig

	// EvictionInterval sets how often expired entries are collected.
	// Zero uses sturdyc's default.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig mirrors sturdyc's early refresh options.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a Config with defaults suitable for most workloads.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &cache.ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &cache.ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &cache.ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

func (c Config) sturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// SturdycStore implements cache.CacheService in process. sturdyc fixes the
// TTL per client, so the store keeps one lazily created client per distinct
// TTL; bindings always call with the same TTL, which keeps every model's
// entries inside a single shard. sturdyc deduplicates concurrent fetches
// for the same key, which is the delegated in-flight dedup guarantee.
type SturdycStore struct {
	cfg    Config
	hooks  cache.Hooks
	shards *xsync.MapOf[time.Duration, *sturdyc.Client[any]]
}

// NewSturdycStore creates the in-process store.
func NewSturdycStore(cfg Config, hooks cache.Hooks) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SturdycStore{
		cfg:    cfg,
		hooks:  hooks,
		shards: xsync.NewMapOf[time.Duration, *sturdyc.Client[any]](),
	}, nil
}

func (s *SturdycStore) clientFor(ttl time.Duration) *sturdyc.Client[any] {
	client, _ := s.shards.LoadOrCompute(ttl, func() *sturdyc.Client[any] {
		return sturdyc.New[any](
			s.cfg.Capacity,
			s.cfg.NumShards,
			ttl,
			s.cfg.EvictionPercentage,
			s.cfg.sturdycOptions()...,
		)
	})
	return client
}

// GetOrFetch implements cache.CacheService. Fetch failures come back
// wrapped in cache.ExecutorError; any other error is a cache failure.
func (s *SturdycStore) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetchFn any) (any, error) {
	if err := cache.ValidateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	var fetched atomic.Bool
	result, err := s.clientFor(ttl).GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		fetched.Store(true)
		value, err := cache.InvokeFetchFn(ctx, fetchFn)
		if err != nil {
			return nil, &cache.ExecutorError{Err: err}
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}

	if fetched.Load() {
		s.hooks.EmitMiss(key)
	} else {
		s.hooks.EmitHit(key)
	}
	return result, nil
}

// Delete implements cache.CacheService. The TTL a key was stored under is
// unknown here, so every shard is asked to forget it.
func (s *SturdycStore) Delete(ctx context.Context, key string) error {
	s.shards.Range(func(_ time.Duration, client *sturdyc.Client[any]) bool {
		client.Delete(key)
		return true
	})
	return nil
}

// DeleteByPattern implements cache.CacheService using a '*' glob over the
// keys of every shard.
func (s *SturdycStore) DeleteByPattern(ctx context.Context, pattern string) error {
	s.shards.Range(func(_ time.Duration, client *sturdyc.Client[any]) bool {
		for _, key := range client.ScanKeys() {
			if matchPattern(pattern, key) {
				client.Delete(key)
			}
		}
		return true
	})
	return nil
}
