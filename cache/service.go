package cache

import (
	"context"
	"fmt"
	"time"
)

// KeySerializer builds a deterministic call key from an operation name and
// its argument payload. The same operation with the same arguments must
// always produce the same key.
type KeySerializer interface {
	SerializeKey(operation string, args ...any) string
}

// FetchFn is the function signature a CacheService invokes to reach the
// source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService is the downstream collaborator contract: a tag store with
// read-through semantics. GetOrFetch accepts fetchFn as any so that typed
// closures (func(context.Context) (T, error)) can flow through without the
// caller erasing their result type; implementations use the helpers in
// fetch.go to validate and invoke it.
//
// DeleteByPattern removes every entry whose key matches a glob pattern where
// '*' matches any run of characters. It is the unit of tag invalidation.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetchFn any) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ExecutorError marks an error as originating from the real executor rather
// than the cache layer. Stores wrap fetch failures with it so callers can
// tell a source-of-truth failure (propagate) from a cache failure (fall back).
type ExecutorError struct {
	Err error
}

func (e *ExecutorError) Error() string {
	return e.Err.Error()
}

func (e *ExecutorError) Unwrap() error {
	return e.Err
}

// GetOrFetch is a type-safe wrapper over CacheService.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, ttl time.Duration, fetchFn FetchFn[T]) (T, error) {
	result, err := service.GetOrFetch(ctx, key, ttl, fetchFn)
	if err != nil {
		var zero T
		return zero, err
	}
	if result == nil {
		var zero T
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: unexpected result type %T for key %q", result, key)
	}
	return typed, nil
}
