package querycache

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/goliatone/go-query-cache/cache"
)

var _ Middleware = (*Pipeline)(nil)

// Pipeline is the chokepoint every data-access invocation passes through.
// It classifies the operation, resolves the model's cache binding, serves
// reads through the backing store, and fans out tag invalidation after
// successful writes. Constructed once; safe for concurrent use.
type Pipeline struct {
	store      cache.CacheService
	serializer cache.KeySerializer
	registry   *Registry
	classifier *classifier
	hooks      cache.Hooks
	logger     *zap.Logger
}

// New builds a pipeline from the configuration and collaborators. The
// configuration is folded into immutable decision tables here; changing it
// afterwards has no effect.
func New(cfg cache.Config, store cache.CacheService, serializer cache.KeySerializer) *Pipeline {
	if serializer == nil {
		serializer = cache.NewDefaultKeySerializer()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rules := foldRules(cfg.Models)
	return &Pipeline{
		store:      store,
		serializer: serializer,
		registry:   NewRegistry(cfg, rules),
		classifier: newClassifier(cfg, rules),
		hooks:      cfg.Hooks,
		logger:     logger,
	}
}

// Execute implements Middleware. The result is returned to the caller
// unchanged in shape, whether it came from the cache, a fresh fetch, or
// direct execution.
func (p *Pipeline) Execute(ctx context.Context, op Operation) (any, error) {
	switch p.classifier.classify(op) {
	case actionSkip:
		return cache.InvokeFetchFn(ctx, op.Exec)

	case actionWrite:
		// Writes never touch the cache on the way in; a failed write
		// suppresses invalidation entirely.
		result, err := cache.InvokeFetchFn(ctx, op.Exec)
		if err != nil {
			return result, err
		}
		p.invalidate(ctx, op.Model)
		return result, nil
	}

	b := p.registry.getOrCreate(op.Model)
	if b == nil {
		return cache.InvokeFetchFn(ctx, op.Exec)
	}

	tag := FormatTag(b.tagKey, p.serializer.SerializeKey(op.Name, op.Args...))
	result, err := p.store.GetOrFetch(ctx, tag, b.ttl, op.Exec)
	if err != nil {
		var execErr *cache.ExecutorError
		if errors.As(err, &execErr) {
			return nil, execErr.Err
		}
		// Cache failure: degrade to direct execution, never surface.
		p.logger.Warn("cache unavailable, falling back to source",
			zap.String("model", op.Model),
			zap.String("operation", op.Name),
			zap.String("tag", tag),
			zap.Error(err))
		p.hooks.EmitError(tag, err)
		return cache.InvokeFetchFn(ctx, op.Exec)
	}
	return result, nil
}
