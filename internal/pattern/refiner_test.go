package pattern

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/promptstudiohq/prompt-studio/internal/llm"
)

type mockProvider struct {
	name     string
	response *llm.Response
	err      error
	lastReq  *llm.Request
}

func (m *mockProvider) Name() string { return m.name }
func (m *mockProvider) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	m.lastReq = req
	return m.response, m.err
}

func textResponse(text string) *llm.Response {
	return &llm.Response{
		Content: []llm.ContentBlock{{Type: "text", Text: text}},
	}
}

func ruleFixture() Result {
	return Result{
		"role_prompting": {
			Pattern:     "role_prompting",
			Confidence:  0.35,
			Evidence:    []string{"...You are a helpful assistant..."},
			Description: "Assigns a specific role or persona",
			Category:    CategoryBasic,
		},
		ZeroShot: {
			Pattern:     ZeroShot,
			Confidence:  0.7,
			Evidence:    []string{zeroShotEvidence},
			Description: "Direct task without examples",
			Category:    CategoryBasic,
		},
	}
}

func TestRefine_NilRefiner(t *testing.T) {
	rules := ruleFixture()

	var r *Refiner
	got, refined := r.Refine(context.Background(), "x", rules)
	if refined || !reflect.DeepEqual(got, rules) {
		t.Fatal("nil refiner should return rules unchanged")
	}

	r = &Refiner{}
	got, refined = r.Refine(context.Background(), "x", rules)
	if refined || !reflect.DeepEqual(got, rules) {
		t.Fatal("nil provider should return rules unchanged")
	}
}

func TestRefine_ProviderErrorFallsBack(t *testing.T) {
	rules := ruleFixture()
	r := &Refiner{Provider: &mockProvider{name: "test", err: errors.New("timeout")}}

	got, refined := r.Refine(context.Background(), "x", rules)
	if refined {
		t.Error("refined should be false on provider error")
	}
	if !reflect.DeepEqual(got, rules) {
		t.Error("rules should come back unchanged on provider error")
	}
}

func TestRefine_MalformedResponseFallsBack(t *testing.T) {
	rules := ruleFixture()
	r := &Refiner{Provider: &mockProvider{name: "test", response: textResponse("sorry, no JSON here")}}

	got, refined := r.Refine(context.Background(), "x", rules)
	if refined {
		t.Error("refined should be false on malformed response")
	}
	if !reflect.DeepEqual(got, rules) {
		t.Error("rules should come back unchanged, never partially overwritten")
	}
}

func TestRefine_EmptyPatternSetFallsBack(t *testing.T) {
	rules := ruleFixture()
	r := &Refiner{Provider: &mockProvider{name: "test", response: textResponse(`{"patterns": {}}`)}}

	got, refined := r.Refine(context.Background(), "x", rules)
	if refined || !reflect.DeepEqual(got, rules) {
		t.Fatal("empty refined set should fall back to rules")
	}
}

func TestRefine_UnknownNamesDropped(t *testing.T) {
	rules := ruleFixture()
	resp := textResponse(`{
		"patterns": {
			"invented_pattern": {"confidence": 0.9, "evidence": ["x"]},
			"rag": {"confidence": 0.9, "evidence": ["uses the provided documents"]}
		}
	}`)
	r := &Refiner{Provider: &mockProvider{name: "test", response: resp}}

	got, refined := r.Refine(context.Background(), "x", rules)
	if !refined {
		t.Fatal("expected refinement to apply")
	}
	if len(got) != 1 {
		t.Fatalf("expected only known patterns, got %d", len(got))
	}

	rag, ok := got["rag"]
	if !ok {
		t.Fatal("missing rag")
	}
	if rag.Description != "Retrieval Augmented Generation (RAG)" {
		t.Errorf("description should default from the catalog, got %q", rag.Description)
	}
	if rag.Category != CategoryRetrieval {
		t.Errorf("category should default from the catalog, got %q", rag.Category)
	}
}

func TestRefine_ClampsAndNormalizes(t *testing.T) {
	rules := ruleFixture()
	resp := textResponse(`{
		"patterns": {
			"rag": {"confidence": 1.7, "evidence": ["a", "b", "c", "d"], "category": "Weird"},
			"react": {"confidence": -0.2, "evidence": []}
		}
	}`)
	r := &Refiner{Provider: &mockProvider{name: "test", response: resp}}

	got, refined := r.Refine(context.Background(), "x", rules)
	if !refined {
		t.Fatal("expected refinement to apply")
	}

	rag := got["rag"]
	if rag.Confidence != 1.0 {
		t.Errorf("confidence should clamp to 1.0, got %v", rag.Confidence)
	}
	if len(rag.Evidence) != maxEvidence {
		t.Errorf("evidence should truncate to %d, got %d", maxEvidence, len(rag.Evidence))
	}
	if rag.Category != CategoryRetrieval {
		t.Errorf("unknown category should default from the catalog, got %q", rag.Category)
	}

	react := got["react"]
	if react.Confidence != 0 {
		t.Errorf("confidence should clamp to 0, got %v", react.Confidence)
	}
}

func TestRefine_FencedResponse(t *testing.T) {
	rules := ruleFixture()
	resp := textResponse("```json\n{\"patterns\": {\"rag\": {\"confidence\": 0.8, \"evidence\": [\"e\"]}}}\n```")
	r := &Refiner{Provider: &mockProvider{name: "test", response: resp}}

	got, refined := r.Refine(context.Background(), "x", rules)
	if !refined {
		t.Fatal("expected fenced JSON to parse")
	}
	if got["rag"].Confidence != 0.8 {
		t.Errorf("confidence: got %v", got["rag"].Confidence)
	}
}

func TestRefine_MetaPromptContents(t *testing.T) {
	rules := ruleFixture()
	mock := &mockProvider{name: "test", response: textResponse("junk")}
	r := &Refiner{Provider: mock}

	r.Refine(context.Background(), "You are a helpful assistant.", rules)

	if mock.lastReq == nil || len(mock.lastReq.Messages) != 1 {
		t.Fatal("expected a single-message request")
	}
	meta := mock.lastReq.Messages[0].Content
	for _, want := range []string{
		"You are a helpful assistant.",
		"Pattern: role_prompting",
		"Confidence: 0.35",
		"- zero_shot",
		"- peer_review",
		"Respond ONLY with the JSON object",
	} {
		if !strings.Contains(meta, want) {
			t.Errorf("meta prompt missing %q", want)
		}
	}
}
