package cacheinfra

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-query-cache/cache"
)

// fakeRedisClient implements RedisClient over a map so the store can be
// exercised without a server.
type fakeRedisClient struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	scanErr error
}

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	value, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(value), nil)
}

func (f *fakeRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

func (f *fakeRedisClient) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scanErr != nil {
		return redis.NewScanCmdResult(nil, 0, f.scanErr)
	}
	var keys []string
	for key := range f.data {
		if matchPattern(match, key) {
			keys = append(keys, key)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

func (f *fakeRedisClient) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.data {
		keys = append(keys, key)
	}
	return keys
}

type testRecord struct {
	ID   string `msgpack:"id"`
	Name string `msgpack:"name"`
}

func newTestRedisStore(t *testing.T, client RedisClient, hooks cache.Hooks) *RedisStore {
	t.Helper()
	store, err := NewRedisStore(client, "qc", nil, hooks, nil)
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	return store
}

func TestRedisStore_RequiresClient(t *testing.T) {
	if _, err := NewRedisStore(nil, "", nil, cache.Hooks{}, nil); err == nil {
		t.Error("expected an error for nil client")
	}
}

func TestRedisStore_MissStoresAndHitDecodes(t *testing.T) {
	client := newFakeRedisClient()
	var hits, misses atomic.Int64
	store := newTestRedisStore(t, client, cache.Hooks{
		OnHit:  func(string) { hits.Add(1) },
		OnMiss: func(string) { misses.Add(1) },
	})

	calls := 0
	fetch := func(ctx context.Context) (testRecord, error) {
		calls++
		return testRecord{ID: "1", Name: "Ada"}, nil
	}

	first, err := store.GetOrFetch(context.Background(), "User~k1", 300*time.Second, fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.GetOrFetch(context.Background(), "User~k1", 300*time.Second, fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected one fetch, got %d", calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("hit must decode to identical data: %+v vs %+v", first, second)
	}
	if _, ok := second.(testRecord); !ok {
		t.Errorf("decoded value must keep its type, got %T", second)
	}
	if misses.Load() != 1 || hits.Load() != 1 {
		t.Errorf("hooks: %d misses, %d hits", misses.Load(), hits.Load())
	}
	if client.ttls["qc:User~k1"] != 300*time.Second {
		t.Errorf("stored TTL = %v", client.ttls["qc:User~k1"])
	}
}

func TestRedisStore_ExecutorErrorWrapped(t *testing.T) {
	store := newTestRedisStore(t, newFakeRedisClient(), cache.Hooks{})

	fetchErr := errors.New("db down")
	_, err := store.GetOrFetch(context.Background(), "k", time.Minute, func(ctx context.Context) (string, error) {
		return "", fetchErr
	})

	var execErr *cache.ExecutorError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutorError, got %v", err)
	}
	if !errors.Is(err, fetchErr) {
		t.Errorf("original error must be reachable, got %v", err)
	}
}

func TestRedisStore_GetFailureSurfacesAsCacheError(t *testing.T) {
	client := newFakeRedisClient()
	client.getErr = errors.New("connection refused")
	store := newTestRedisStore(t, client, cache.Hooks{})

	_, err := store.GetOrFetch(context.Background(), "k", time.Minute, func(ctx context.Context) (string, error) {
		return "v", nil
	})
	if err == nil {
		t.Fatal("expected a cache error")
	}
	var execErr *cache.ExecutorError
	if errors.As(err, &execErr) {
		t.Error("a store failure must not look like an executor failure")
	}
}

func TestRedisStore_SetFailureStillReturnsFreshResult(t *testing.T) {
	client := newFakeRedisClient()
	client.setErr = errors.New("readonly replica")
	var hookErrs atomic.Int64
	store := newTestRedisStore(t, client, cache.Hooks{
		OnError: func(string, error) { hookErrs.Add(1) },
	})

	result, err := store.GetOrFetch(context.Background(), "k", time.Minute, func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	if err != nil {
		t.Fatalf("a write-back failure must not surface: %v", err)
	}
	if result != "fresh" {
		t.Errorf("result = %v", result)
	}
	if hookErrs.Load() != 1 {
		t.Errorf("expected OnError raised once, got %d", hookErrs.Load())
	}
}

func TestRedisStore_DeleteByPattern(t *testing.T) {
	client := newFakeRedisClient()
	store := newTestRedisStore(t, client, cache.Hooks{})

	seed := map[string]testRecord{
		"User~a": {ID: "1"},
		"User~b": {ID: "2"},
		"Post~a": {ID: "3"},
	}
	for key, record := range seed {
		record := record
		if _, err := store.GetOrFetch(context.Background(), key, time.Minute, func(ctx context.Context) (testRecord, error) {
			return record, nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.DeleteByPattern(context.Background(), "*User~*"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	remaining := client.keys()
	if len(remaining) != 1 || remaining[0] != "qc:Post~a" {
		t.Errorf("expected only Post entry to survive, got %v", remaining)
	}
}

func TestRedisStore_ConcurrentMissesCoalesce(t *testing.T) {
	client := newFakeRedisClient()
	store := newTestRedisStore(t, client, cache.Hooks{})

	var calls atomic.Int64
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return "shared", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := store.GetOrFetch(context.Background(), "hot", time.Minute, fetch)
			if err != nil {
				t.Error(err)
				return
			}
			if result != "shared" {
				t.Errorf("result = %v", result)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected singleflight to coalesce fetches, got %d", calls.Load())
	}
}
