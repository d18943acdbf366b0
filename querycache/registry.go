package querycache

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-query-cache/cache"
)

// binding is the live, memoized cache function state for one model. It is
// created at most once per model for the lifetime of the pipeline and owns
// nothing beyond its tag key, TTL, and related-model list; cached values
// live in the backing store.
type binding struct {
	model   string
	tagKey  string
	ttl     time.Duration
	related []string
}

// Registry lazily builds and memoizes one binding per model. Creation is
// idempotent: concurrent first-reads of the same model converge on a single
// binding via the map's load-or-compute, and the first registration wins
// even if configuration would resolve differently later.
type Registry struct {
	bindings         *xsync.MapOf[string, *binding]
	rules            map[string]cache.ModelRule
	excludeModels    map[string]struct{}
	defaultTTL       time.Duration
	skipUnconfigured bool
}

// NewRegistry builds a registry from the global configuration. Rules are
// folded by model name in declaration order, so duplicate declarations
// resolve to the last one.
func NewRegistry(cfg cache.Config, rules map[string]cache.ModelRule) *Registry {
	return &Registry{
		bindings:         xsync.NewMapOf[string, *binding](),
		rules:            rules,
		excludeModels:    toSet(cfg.ExcludeModels),
		defaultTTL:       cfg.CacheTime,
		skipUnconfigured: cfg.SkipUnconfigured,
	}
}

// foldRules collapses a rule list into a map keyed by model name.
func foldRules(rules []cache.ModelRule) map[string]cache.ModelRule {
	folded := make(map[string]cache.ModelRule, len(rules))
	for _, rule := range rules {
		folded[rule.Model] = rule
	}
	return folded
}

// getOrCreate returns the binding for model, creating it on first sight.
// It returns nil when the model is not cacheable: globally excluded,
// unconfigured while SkipUnconfigured is set, or resolving to a zero TTL.
func (r *Registry) getOrCreate(model string) *binding {
	if b, ok := r.bindings.Load(model); ok {
		return b
	}

	if _, excluded := r.excludeModels[model]; excluded {
		return nil
	}

	rule, configured := r.rules[model]
	if !configured && r.skipUnconfigured {
		return nil
	}

	ttl := rule.CacheTime
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	if ttl <= 0 {
		return nil
	}

	tagKey := rule.TagKey
	if tagKey == "" {
		tagKey = model
	}

	b, _ := r.bindings.LoadOrCompute(model, func() *binding {
		return &binding{
			model:   model,
			tagKey:  tagKey,
			ttl:     ttl,
			related: append([]string(nil), rule.RelatedModels...),
		}
	})
	return b
}

// tagKeyFor resolves the tag namespace for a model: the rule's override
// when declared, the model name otherwise.
func (r *Registry) tagKeyFor(model string) string {
	if rule, ok := r.rules[model]; ok && rule.TagKey != "" {
		return rule.TagKey
	}
	return model
}

// invalidationTargets returns the tag keys to wipe after a successful write
// on model: the model's own tag key followed by the tag keys of every
// declared related model.
func (r *Registry) invalidationTargets(model string, extra []string) []string {
	targets := []string{r.tagKeyFor(model)}
	if rule, ok := r.rules[model]; ok {
		for _, related := range rule.RelatedModels {
			targets = append(targets, r.tagKeyFor(related))
		}
	}
	for _, related := range extra {
		targets = append(targets, r.tagKeyFor(related))
	}
	return dedupeStrings(targets)
}
