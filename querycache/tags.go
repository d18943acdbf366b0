package querycache

import (
	"context"
	"strings"
)

// TagSeparator joins a tag key and a call key into an invalidation tag.
// Wildcard deletion relies on it being the only '~' in the tag, so call
// keys are sanitized before formatting.
const TagSeparator = "~"

// FormatTag builds the cache key for one read: <tagKey>~<callKey>.
func FormatTag(tagKey, callKey string) string {
	return tagKey + TagSeparator + strings.ReplaceAll(callKey, TagSeparator, "-")
}

// Pattern returns the wildcard pattern matching every tag under tagKey.
func Pattern(tagKey string) string {
	return "*" + tagKey + TagSeparator + "*"
}

type invalidationModelsContextKey struct{}

// WithInvalidationModels attaches extra model names to the context; a write
// flowing through the pipeline with this context fans out to their tags as
// well as the configured related models.
func WithInvalidationModels(ctx context.Context, models ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(models) == 0 {
		return ctx
	}

	combined := dedupeStrings(append(invalidationModelsFromContext(ctx), models...))
	return context.WithValue(ctx, invalidationModelsContextKey{}, combined)
}

func invalidationModelsFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if models, ok := ctx.Value(invalidationModelsContextKey{}).([]string); ok {
		return append([]string(nil), models...)
	}
	return nil
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
