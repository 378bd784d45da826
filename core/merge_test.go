package core

import (
	"reflect"
	"testing"
)

func TestMergePatch(t *testing.T) {
	cases := []struct {
		name  string
		base  map[string]any
		patch map[string]any
		want  map[string]any
	}{
		{
			name:  "empty patch is identity",
			base:  map[string]any{"a": 1, "b": map[string]any{"c": 2}},
			patch: map[string]any{},
			want:  map[string]any{"a": 1, "b": map[string]any{"c": 2}},
		},
		{
			name:  "leaf conflicts are right biased",
			base:  map[string]any{"a": 1},
			patch: map[string]any{"a": 2},
			want:  map[string]any{"a": 2},
		},
		{
			name:  "nested records merge deep",
			base:  map[string]any{"a": map[string]any{"b": 1, "c": 2}},
			patch: map[string]any{"a": map[string]any{"b": 9}},
			want:  map[string]any{"a": map[string]any{"b": 9, "c": 2}},
		},
		{
			name:  "arrays replace wholesale",
			base:  map[string]any{"a": []any{1, 2}},
			patch: map[string]any{"a": []any{3}},
			want:  map[string]any{"a": []any{3}},
		},
		{
			name:  "record replaces scalar",
			base:  map[string]any{"a": "x"},
			patch: map[string]any{"a": map[string]any{"b": 1}},
			want:  map[string]any{"a": map[string]any{"b": 1}},
		},
		{
			name:  "scalar replaces record",
			base:  map[string]any{"a": map[string]any{"b": 1}},
			patch: map[string]any{"a": "x"},
			want:  map[string]any{"a": "x"},
		},
		{
			name:  "nil patch value replaces",
			base:  map[string]any{"a": map[string]any{"b": 1}},
			patch: map[string]any{"a": nil},
			want:  map[string]any{"a": nil},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MergePatch(tc.base, tc.patch)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("merge mismatch: got %#v want %#v", got, tc.want)
			}
		})
	}
}

func TestMergePatch_DoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"a": map[string]any{"b": 1}}
	patch := map[string]any{"a": map[string]any{"c": 2}}

	_ = MergePatch(base, patch)

	inner := base["a"].(map[string]any)
	if _, leaked := inner["c"]; leaked {
		t.Fatalf("expected base to be untouched, got %#v", base)
	}
	if len(patch["a"].(map[string]any)) != 1 {
		t.Fatalf("expected patch to be untouched, got %#v", patch)
	}
}
