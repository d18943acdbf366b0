package querycache

import "github.com/goliatone/go-query-cache/cache"

type action int

const (
	actionSkip action = iota
	actionRead
	actionWrite
)

// classifier decides, per operation, whether the cache applies. It is a
// pure decision table precomputed from configuration.
type classifier struct {
	excludeModels  map[string]struct{}
	excludeMethods map[string]struct{}
	ruleExcludes   map[string]map[string]struct{}
}

func newClassifier(cfg cache.Config, rules map[string]cache.ModelRule) *classifier {
	c := &classifier{
		excludeModels:  toSet(cfg.ExcludeModels),
		excludeMethods: toSet(cfg.ExcludeMethods),
		ruleExcludes:   make(map[string]map[string]struct{}),
	}
	for model, rule := range rules {
		if len(rule.ExcludeMethods) > 0 {
			c.ruleExcludes[model] = toSet(rule.ExcludeMethods)
		}
	}
	return c
}

func (c *classifier) classify(op Operation) action {
	if _, ok := c.excludeModels[op.Model]; ok {
		return actionSkip
	}
	if _, ok := c.excludeMethods[op.Name]; ok {
		return actionSkip
	}
	if methods, ok := c.ruleExcludes[op.Model]; ok {
		if _, ok := methods[op.Name]; ok {
			return actionSkip
		}
	}
	if IsMutating(op.Name) {
		return actionWrite
	}
	return actionRead
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
