package cacheinfra

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-query-cache/cache"
)

// RedisClient captures the subset of redis.Client the store uses. Narrowed
// so tests can run against a fake without a server.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

const scanBatchSize = 200

// RedisStore implements cache.CacheService on a shared redis instance.
// Values are encoded through the configured Transformer; on a hit the
// payload is decoded into the fetch function's result type. Concurrent
// identical misses in this process are coalesced with singleflight so the
// source of truth sees a single fetch.
type RedisStore struct {
	client      RedisClient
	transformer cache.Transformer
	hooks       cache.Hooks
	logger      *zap.Logger
	prefix      string
	group       singleflight.Group
}

// NewRedisStore creates a redis-backed store. A nil transformer defaults to
// msgpack; a nil logger defaults to a no-op.
func NewRedisStore(client RedisClient, prefix string, transformer cache.Transformer, hooks cache.Hooks, logger *zap.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, &cache.ConfigError{Field: "client", Message: "cannot be nil"}
	}
	if transformer == nil {
		transformer = cache.NewMsgpackTransformer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:      client,
		transformer: transformer,
		hooks:       hooks,
		logger:      logger,
		prefix:      prefix,
	}, nil
}

func (s *RedisStore) cacheKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// GetOrFetch implements cache.CacheService.
func (s *RedisStore) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetchFn any) (any, error) {
	if err := cache.ValidateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	full := s.cacheKey(key)
	data, err := s.client.Get(ctx, full).Bytes()
	if err == nil {
		value, derr := s.decode(data, fetchFn)
		if derr != nil {
			return nil, derr
		}
		s.hooks.EmitHit(key)
		return value, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	value, err, shared := s.group.Do(full, func() (any, error) {
		result, ferr := cache.InvokeFetchFn(ctx, fetchFn)
		if ferr != nil {
			return nil, &cache.ExecutorError{Err: ferr}
		}
		s.store(ctx, key, full, result, ttl)
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		s.hooks.EmitDedupe(key)
	} else {
		s.hooks.EmitMiss(key)
	}
	return value, nil
}

// store writes the fetched value back. The fetch already succeeded, so a
// serialization or SET failure is reported but never surfaced: the caller
// still gets the fresh result.
func (s *RedisStore) store(ctx context.Context, key, full string, value any, ttl time.Duration) {
	payload, err := s.transformer.Serialize(value)
	if err == nil {
		err = s.client.Set(ctx, full, payload, ttl).Err()
	}
	if err != nil {
		s.logger.Warn("failed to store cache entry", zap.String("key", key), zap.Error(err))
		s.hooks.EmitError(key, err)
	}
}

// decode rebuilds a typed value from a stored payload using the fetch
// function's result type.
func (s *RedisStore) decode(data []byte, fetchFn any) (any, error) {
	resultType := cache.FetchResultType(fetchFn)
	if resultType == nil {
		return nil, &cache.ConfigError{Field: "fetchFn", Message: "cannot determine result type"}
	}
	target := reflect.New(resultType)
	if err := s.transformer.Deserialize(data, target.Interface()); err != nil {
		return nil, err
	}
	return target.Elem().Interface(), nil
}

// Delete implements cache.CacheService.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.cacheKey(key)).Err()
}

// DeleteByPattern implements cache.CacheService using SCAN + DEL so large
// keyspaces are walked incrementally instead of blocking redis with KEYS.
func (s *RedisStore) DeleteByPattern(ctx context.Context, pattern string) error {
	match := s.cacheKey(pattern)
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
