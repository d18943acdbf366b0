// Package cache defines the public contracts of go-query-cache: the
// configuration surface, the backing-store interface, key serialization,
// value transformation, and lifecycle hooks.
//
// # Configuration
//
// Config is consumed once when the interception pipeline is built and is
// immutable afterwards. Per-model behavior is declared through ModelRule:
//
//	cfg := cache.Config{
//		CacheTime: 5 * time.Minute,
//		Models: []cache.ModelRule{
//			{Model: "User", CacheTime: 300 * time.Second, RelatedModels: []string{"Post"}},
//		},
//		ExcludeMethods: []string{"count"},
//	}
//
// # Backing stores
//
// CacheService is the downstream collaborator: get-or-fetch with a per-call
// TTL, single-key deletion, and wildcard pattern deletion. Two
// implementations ship with the module (see internal/cacheinfra): an
// in-process store built on sturdyc, which also deduplicates concurrent
// identical fetches, and a redis store that coalesces in-flight fetches
// with singleflight and encodes values through the Transformer.
//
// # Key serialization
//
// NewDefaultKeySerializer produces deterministic call keys from an
// operation name and its arguments. Keys longer than an internal limit are
// replaced by an xxhash digest. Custom serializers only need to satisfy
// KeySerializer.
//
// # Error taxonomy
//
// Stores wrap source-of-truth failures in ExecutorError so the pipeline can
// propagate them verbatim while treating every other error as a recoverable
// cache failure.
package cache
