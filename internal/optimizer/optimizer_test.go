package optimizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/promptstudiohq/prompt-studio/internal/llm"
)

// mockProvider replays scripted responses in call order.
type mockProvider struct {
	name      string
	responses []string
	err       error
	requests  []*llm.Request
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	idx := len(m.requests) - 1
	if idx >= len(m.responses) {
		return nil, errors.New("mock: no scripted response")
	}
	return &llm.Response{
		Content: []llm.ContentBlock{{Type: "text", Text: m.responses[idx]}},
	}, nil
}

func TestOptimize_KeepsMatchingDemos(t *testing.T) {
	examples := []Example{
		{Question: "What is 2+2?", Answer: "4"},
		{Question: "Capital of France?", Answer: "Paris"},
		{Question: "What is 2*3?", Answer: "6"},
	}
	mock := &mockProvider{name: "test", responses: []string{"4", "London", " 6. "}}
	o := &Optimizer{Provider: mock}

	got, err := o.Optimize(context.Background(), "Answer the question.", examples)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if got.Attempted != 3 {
		t.Errorf("attempted: got %d, want 3", got.Attempted)
	}
	if len(got.Demos) != 2 {
		t.Fatalf("demos: got %d, want 2 (%+v)", len(got.Demos), got.Demos)
	}
	if got.Demos[0].Question != "What is 2+2?" || got.Demos[1].Question != "What is 2*3?" {
		t.Errorf("wrong demos kept: %+v", got.Demos)
	}

	if !strings.HasPrefix(got.OptimizedPrompt, "Answer the question.\n\n--- Examples ---\n") {
		t.Errorf("prompt header wrong:\n%s", got.OptimizedPrompt)
	}
	if !strings.Contains(got.OptimizedPrompt, "Question: What is 2+2?\nAnswer: 4\n\n") {
		t.Errorf("first demo missing:\n%s", got.OptimizedPrompt)
	}
	if strings.Contains(got.OptimizedPrompt, "Capital of France?") {
		t.Errorf("failed demo leaked into prompt:\n%s", got.OptimizedPrompt)
	}
}

func TestOptimize_StopsAtMaxDemos(t *testing.T) {
	var examples []Example
	var responses []string
	for i := 0; i < 6; i++ {
		examples = append(examples, Example{Question: "q", Answer: "yes"})
		responses = append(responses, "yes")
	}
	mock := &mockProvider{name: "test", responses: responses}
	o := &Optimizer{Provider: mock}

	got, err := o.Optimize(context.Background(), "Answer.", examples)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(got.Demos) != defaultMaxDemos {
		t.Errorf("demos: got %d, want %d", len(got.Demos), defaultMaxDemos)
	}
	if len(mock.requests) != defaultMaxDemos {
		t.Errorf("provider calls: got %d, want %d", len(mock.requests), defaultMaxDemos)
	}
}

func TestOptimize_CustomMaxDemos(t *testing.T) {
	examples := []Example{
		{Question: "a", Answer: "1"},
		{Question: "b", Answer: "2"},
	}
	mock := &mockProvider{name: "test", responses: []string{"1", "2"}}
	o := &Optimizer{Provider: mock, MaxDemos: 1}

	got, err := o.Optimize(context.Background(), "Answer.", examples)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(got.Demos) != 1 || got.Demos[0].Question != "a" {
		t.Errorf("demos: %+v", got.Demos)
	}
}

func TestOptimize_NoMatchesKeepsHeader(t *testing.T) {
	examples := []Example{{Question: "q1", Answer: "right"}}
	mock := &mockProvider{name: "test", responses: []string{"wrong"}}
	o := &Optimizer{Provider: mock}

	got, err := o.Optimize(context.Background(), "Answer.", examples)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(got.Demos) != 0 {
		t.Errorf("demos: %+v", got.Demos)
	}
	if got.OptimizedPrompt != "Answer.\n\n--- Examples ---\n" {
		t.Errorf("prompt: %q", got.OptimizedPrompt)
	}
}

func TestOptimize_NoExamples(t *testing.T) {
	mock := &mockProvider{name: "test"}
	o := &Optimizer{Provider: mock}

	got, err := o.Optimize(context.Background(), "Answer.", nil)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if got.Attempted != 0 || len(mock.requests) != 0 {
		t.Errorf("no provider calls expected, got %d", len(mock.requests))
	}
	if !strings.Contains(got.OptimizedPrompt, "--- Examples ---") {
		t.Errorf("prompt: %q", got.OptimizedPrompt)
	}
}

func TestOptimize_ProviderErrorSurfaces(t *testing.T) {
	mock := &mockProvider{name: "test", err: errors.New("connection refused")}
	o := &Optimizer{Provider: mock}

	_, err := o.Optimize(context.Background(), "Answer.", []Example{{Question: "q", Answer: "a"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOptimize_Guards(t *testing.T) {
	examples := []Example{{Question: "q", Answer: "a"}}

	var nilOpt *Optimizer
	if _, err := nilOpt.Optimize(context.Background(), "p", examples); err == nil {
		t.Error("nil optimizer should error")
	}
	if _, err := (&Optimizer{}).Optimize(context.Background(), "p", examples); err == nil {
		t.Error("nil provider should error")
	}
	o := &Optimizer{Provider: &mockProvider{name: "test"}}
	//nolint:staticcheck // intentional nil context for test
	if _, err := o.Optimize(nil, "p", examples); err == nil {
		t.Error("nil context should error")
	}
	if _, err := o.Optimize(context.Background(), "   ", examples); err == nil {
		t.Error("empty prompt should error")
	}
}

func TestOptimize_InstructionsCarriedAsSystem(t *testing.T) {
	mock := &mockProvider{name: "test", responses: []string{"a"}}
	o := &Optimizer{Provider: mock}

	if _, err := o.Optimize(context.Background(), "You are terse.", []Example{{Question: "q?", Answer: "a"}}); err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if len(mock.requests) != 1 {
		t.Fatalf("requests: got %d, want 1", len(mock.requests))
	}
	req := mock.requests[0]
	if req.System != "You are terse." {
		t.Errorf("system: got %q", req.System)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "q?" {
		t.Errorf("messages: %+v", req.Messages)
	}
	if req.Temperature != 0 {
		t.Errorf("temperature: got %v, want 0", req.Temperature)
	}
}

func TestAnswersMatch(t *testing.T) {
	tests := []struct {
		got, want string
		match     bool
	}{
		{"4", "4", true},
		{" 4. ", "4", true},
		{"PARIS", "paris", true},
		{`"Paris"`, "Paris", true},
		{"London", "Paris", false},
		{"", "", false},
		{"   ", "x", false},
	}
	for _, tt := range tests {
		if got := answersMatch(tt.got, tt.want); got != tt.match {
			t.Errorf("answersMatch(%q, %q) = %v, want %v", tt.got, tt.want, got, tt.match)
		}
	}
}
