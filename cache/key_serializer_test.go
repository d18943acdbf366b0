package cache

import (
	"context"
	"strings"
	"testing"
)

func TestSerializeKey_NoArgs(t *testing.T) {
	s := NewDefaultKeySerializer()
	if got := s.SerializeKey("findMany"); got != "findMany" {
		t.Errorf("SerializeKey with no args = %q, want operation name", got)
	}
}

func TestSerializeKey_BasicTypes(t *testing.T) {
	s := NewDefaultKeySerializer()

	tests := []struct {
		name string
		args []any
		want string
	}{
		{"string", []any{"abc"}, "findMany::abc"},
		{"int", []any{42}, "findMany::42"},
		{"bool", []any{true}, "findMany::true"},
		{"float", []any{3.5}, "findMany::3.5"},
		{"nil", []any{nil}, "findMany::nil"},
		{"multiple", []any{"a", 1, false}, "findMany::a::1::false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SerializeKey("findMany", tt.args...); got != tt.want {
				t.Errorf("SerializeKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerializeKey_Pointers(t *testing.T) {
	s := NewDefaultKeySerializer()

	value := "abc"
	if got := s.SerializeKey("get", &value); got != "get::abc" {
		t.Errorf("pointer should dereference, got %q", got)
	}

	var nilPtr *string
	if got := s.SerializeKey("get", nilPtr); got != "get::nil" {
		t.Errorf("nil pointer = %q, want get::nil", got)
	}
}

func TestSerializeKey_Slices(t *testing.T) {
	s := NewDefaultKeySerializer()

	if got := s.SerializeKey("list", []int{1, 2, 3}); got != "list::slice[3]:{1,2,3}" {
		t.Errorf("slice = %q", got)
	}

	var nilSlice []int
	if got := s.SerializeKey("list", nilSlice); got != "list::slice:nil" {
		t.Errorf("nil slice = %q", got)
	}

	nested := [][]string{{"a"}, {"b", "c"}}
	want := "list::slice[2]:{slice[1]:{a},slice[2]:{b,c}}"
	if got := s.SerializeKey("list", nested); got != want {
		t.Errorf("nested slice = %q, want %q", got, want)
	}
}

func TestSerializeKey_MapsAreDeterministic(t *testing.T) {
	s := NewDefaultKeySerializer()

	m := map[string]int{"zebra": 1, "apple": 2, "mango": 3}
	want := "find::map[3]:{apple=2,mango=3,zebra=1}"

	// Maps iterate in random order; the serializer must not leak that.
	for i := 0; i < 20; i++ {
		if got := s.SerializeKey("find", m); got != want {
			t.Fatalf("iteration %d: got %q, want %q", i, got, want)
		}
	}
}

func TestSerializeKey_Structs(t *testing.T) {
	s := NewDefaultKeySerializer()

	type filter struct {
		Name   string
		Limit  int
		hidden bool
	}

	got := s.SerializeKey("list", filter{Name: "ada", Limit: 10, hidden: true})
	want := "list::struct:{Name:ada,Limit:10}"
	if got != want {
		t.Errorf("struct = %q, want %q (unexported fields skipped)", got, want)
	}
}

func TestSerializeKey_FunctionsByIdentity(t *testing.T) {
	s := NewDefaultKeySerializer()

	fn := func(ctx context.Context) error { return nil }
	first := s.SerializeKey("get", fn)
	second := s.SerializeKey("get", fn)

	if first != second {
		t.Errorf("same function must serialize identically: %q vs %q", first, second)
	}
	if !strings.Contains(first, "func:") {
		t.Errorf("expected func marker, got %q", first)
	}
}

func TestSerializeKey_LongKeysDigested(t *testing.T) {
	s := NewDefaultKeySerializer()

	long := strings.Repeat("x", 1000)
	got := s.SerializeKey("findMany", long)

	if len(got) > maxKeyLength {
		t.Errorf("digested key too long: %d chars", len(got))
	}
	if !strings.HasPrefix(got, "findMany"+KeySeparator+"#") {
		t.Errorf("digest must keep the operation prefix, got %q", got)
	}
	if got != s.SerializeKey("findMany", long) {
		t.Error("digest must be deterministic")
	}
	if got == s.SerializeKey("findMany", strings.Repeat("y", 1000)) {
		t.Error("different payloads must digest differently")
	}
}

func TestSerializeKey_DistinctArgsDistinctKeys(t *testing.T) {
	s := NewDefaultKeySerializer()

	a := s.SerializeKey("findMany", map[string]any{"where": map[string]any{"active": true}})
	b := s.SerializeKey("findMany", map[string]any{"where": map[string]any{"active": false}})
	if a == b {
		t.Errorf("different filters must produce different keys: %q", a)
	}
}
