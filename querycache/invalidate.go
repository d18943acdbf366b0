package querycache

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// invalidate wipes every tag for the written model plus its related models
// (configured and context-scoped). Deletions run concurrently and are all
// attempted even when some fail: entries surviving a partial failure expire
// via TTL.
func (p *Pipeline) invalidate(ctx context.Context, model string) {
	targets := p.registry.invalidationTargets(model, invalidationModelsFromContext(ctx))

	var wg sync.WaitGroup
	for _, tagKey := range targets {
		wg.Add(1)
		go func(tagKey string) {
			defer wg.Done()
			pattern := Pattern(tagKey)
			if err := p.store.DeleteByPattern(ctx, pattern); err != nil {
				p.logger.Warn("cache invalidation failed",
					zap.String("model", model),
					zap.String("pattern", pattern),
					zap.Error(err))
				p.hooks.EmitError(pattern, err)
			}
		}(tagKey)
	}
	wg.Wait()
}
