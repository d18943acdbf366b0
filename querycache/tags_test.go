package querycache

import (
	"context"
	"reflect"
	"testing"
)

func TestFormatTag(t *testing.T) {
	tests := []struct {
		name    string
		tagKey  string
		callKey string
		want    string
	}{
		{"plain", "User", "findMany::json:{}", "User~findMany::json:{}"},
		{"call key separator sanitized", "User", "get::a~b", "User~get::a-b"},
		{"empty call key", "User", "", "User~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTag(tt.tagKey, tt.callKey); got != tt.want {
				t.Errorf("FormatTag(%q, %q) = %q, want %q", tt.tagKey, tt.callKey, got, tt.want)
			}
		})
	}
}

func TestPattern(t *testing.T) {
	if got := Pattern("User"); got != "*User~*" {
		t.Errorf("Pattern(User) = %q", got)
	}
}

func TestWithInvalidationModels(t *testing.T) {
	ctx := WithInvalidationModels(context.Background(), "Post")
	ctx = WithInvalidationModels(ctx, "Comment", "Post")

	got := invalidationModelsFromContext(ctx)
	want := []string{"Post", "Comment"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("models = %v, want %v", got, want)
	}
}

func TestWithInvalidationModels_NoModelsReturnsSameContext(t *testing.T) {
	ctx := context.Background()
	if WithInvalidationModels(ctx) != ctx {
		t.Error("expected unchanged context")
	}
	if got := invalidationModelsFromContext(ctx); got != nil {
		t.Errorf("expected no models, got %v", got)
	}
}

func TestDedupeStrings(t *testing.T) {
	got := dedupeStrings([]string{"a", "b", "a", "", "c", "b"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dedupeStrings = %v, want %v", got, want)
	}
}
