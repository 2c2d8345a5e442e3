package template

import (
	"reflect"
	"strings"
	"testing"
)

func TestResolve_Builtin(t *testing.T) {
	got := Resolve("rlm/rag-prompt")

	if got.Slug != "rlm/rag-prompt" {
		t.Errorf("slug: got %q", got.Slug)
	}
	if !strings.Contains(got.Content, "Helpful Answer:") {
		t.Errorf("unexpected content: %q", got.Content)
	}
	if !reflect.DeepEqual(got.Variables, []string{"context", "question"}) {
		t.Errorf("variables: got %v", got.Variables)
	}
	if got.VariableCount != 2 {
		t.Errorf("variable count: got %d", got.VariableCount)
	}
}

func TestResolve_UnknownSlugSynthesized(t *testing.T) {
	got := Resolve("nonexistent/template")

	if !strings.Contains(got.Content, "nonexistent/template") {
		t.Error("synthesized body should name the slug")
	}
	if !strings.Contains(got.Content, "[Template content not available]") {
		t.Errorf("unexpected content: %q", got.Content)
	}
	if !reflect.DeepEqual(got.Variables, []string{"input"}) {
		t.Errorf("variables: got %v, want single input", got.Variables)
	}
	if got.VariableCount != 1 {
		t.Errorf("variable count: got %d", got.VariableCount)
	}
}

func TestResolve_SimilarSlug(t *testing.T) {
	got := Resolve("react")

	// "react" is a substring of the first registered react template.
	if !strings.Contains(got.Content, "repeat until task is solved") {
		t.Errorf("expected react-chat body, got %q", got.Content)
	}
}

func TestResolve_EmptySlug(t *testing.T) {
	got := Resolve("")

	if !strings.Contains(got.Content, "[Template content not available]") {
		t.Errorf("empty slug should synthesize, got %q", got.Content)
	}
	if !reflect.DeepEqual(got.Variables, []string{"input"}) {
		t.Errorf("variables: got %v", got.Variables)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	first := Resolve("some/unknown-slug")
	second := Resolve("some/unknown-slug")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated resolve differs:\n%#v\n%#v", first, second)
	}
}

func TestVariables(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"none", "no placeholders here", nil},
		{"ordered", "{b} then {a} then {c}", []string{"b", "a", "c"}},
		{"dedup", "{x} and {y} and {x} again", []string{"x", "y"}},
		{"multiword", "fill {example1_input} please", []string{"example1_input"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Variables(tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Variables(%q): got %v want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestSlugs(t *testing.T) {
	got := Slugs()
	if len(got) != len(builtins) {
		t.Fatalf("Slugs: got %d, want %d", len(got), len(builtins))
	}
	if got[0] != "hwchase17/react-chat" {
		t.Errorf("first slug: got %q", got[0])
	}

	found := false
	for _, s := range got {
		if s == "rlm/rag-prompt" {
			found = true
		}
	}
	if !found {
		t.Error("missing rlm/rag-prompt")
	}
}
