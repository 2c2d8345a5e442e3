package pattern

import (
	"strings"
	"testing"
)

func TestDetect_EmptyPrompt(t *testing.T) {
	got := Detect("")
	if len(got) != 0 {
		t.Fatalf("expected empty result for empty prompt, got %d patterns", len(got))
	}
}

func TestDetect_RoleAndChainOfThought(t *testing.T) {
	got := Detect("You are a helpful assistant. Let's think step by step to solve this.")

	role, ok := got["role_prompting"]
	if !ok {
		t.Fatal("expected role_prompting to be detected")
	}
	if role.Confidence < 0.35 {
		t.Errorf("role_prompting confidence: got %v, want >= 0.35", role.Confidence)
	}
	if role.Category != CategoryBasic {
		t.Errorf("role_prompting category: got %q", role.Category)
	}

	cot, ok := got["chain_of_thought"]
	if !ok {
		t.Fatal("expected chain_of_thought to be detected")
	}
	if cot.Confidence != 0.7 {
		t.Errorf("chain_of_thought confidence: got %v, want 0.7 (two trigger hits)", cot.Confidence)
	}

	zero, ok := got[ZeroShot]
	if !ok {
		t.Fatal("expected zero_shot when no few_shot trigger matches")
	}
	if zero.Confidence != zeroShotConfidence {
		t.Errorf("zero_shot confidence: got %v, want %v", zero.Confidence, zeroShotConfidence)
	}
	if len(zero.Evidence) != 1 || zero.Evidence[0] != zeroShotEvidence {
		t.Errorf("zero_shot evidence: got %v", zero.Evidence)
	}
}

func TestDetect_FewShotSuppressesZeroShot(t *testing.T) {
	got := Detect("Here are examples: Input: 2+2 Output: 4. Now answer.")

	if _, ok := got[ZeroShot]; ok {
		t.Error("zero_shot should be suppressed when few_shot triggers match")
	}

	few, ok := got[FewShot]
	if !ok {
		t.Fatal("expected few_shot to be detected")
	}
	if few.Confidence != 0.7 {
		t.Errorf("few_shot confidence: got %v, want 0.7", few.Confidence)
	}
}

func TestDetect_ConfidenceClampedEvidenceCapped(t *testing.T) {
	got := Detect("Format the response as json, then structure it as a table with a markdown list.")

	m, ok := got["output_formatting"]
	if !ok {
		t.Fatal("expected output_formatting to be detected")
	}
	if m.Confidence != 1.0 {
		t.Errorf("confidence: got %v, want clamp at 1.0", m.Confidence)
	}
	if len(m.Evidence) != maxEvidence {
		t.Errorf("evidence: got %d snippets, want %d", len(m.Evidence), maxEvidence)
	}
}

func TestDetect_ConfidenceAccumulates(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   float64
	}{
		{"one_hit", "Think through it.", 0.35},
		{"two_hits", "Think through it step by step.", 0.7},
		{"three_hits_clamped", "Think through it and work through each part step by step.", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.prompt)
			m, ok := got["chain_of_thought"]
			if !ok {
				t.Fatal("expected chain_of_thought to be detected")
			}
			if m.Confidence != tt.want {
				t.Errorf("confidence: got %v, want %v", m.Confidence, tt.want)
			}
		})
	}
}

func TestDetect_NonOverlappingMatchesPerTrigger(t *testing.T) {
	got := Detect("example: one. example: two.")

	few, ok := got[FewShot]
	if !ok {
		t.Fatal("expected few_shot to be detected")
	}
	if few.Confidence != 0.7 {
		t.Errorf("confidence: got %v, want 0.7 for two hits of one trigger", few.Confidence)
	}
	if len(few.Evidence) != 2 {
		t.Errorf("evidence: got %d snippets, want 2", len(few.Evidence))
	}
}

func TestDetect_EvidenceKeepsOriginalCase(t *testing.T) {
	got := Detect("Please ACT AS a pirate captain in this conversation.")

	m, ok := got["role_prompting"]
	if !ok {
		t.Fatal("expected role_prompting to be detected")
	}
	ev := m.Evidence[0]
	if !strings.HasPrefix(ev, "...") || !strings.HasSuffix(ev, "...") {
		t.Errorf("evidence not wrapped in ellipses: %q", ev)
	}
	if !strings.Contains(ev, "ACT AS") {
		t.Errorf("evidence should keep the original casing: %q", ev)
	}
}

func TestDetect_NonASCIIPrompt(t *testing.T) {
	// Lowering İ changes the byte length, so evidence falls back to the
	// lowered copy.
	got := Detect("İstanbul tour: act as a local guide.")

	m, ok := got["role_prompting"]
	if !ok {
		t.Fatal("expected role_prompting to be detected")
	}
	if len(m.Evidence) == 0 || !strings.Contains(m.Evidence[0], "act as a local guide") {
		t.Errorf("unexpected evidence: %v", m.Evidence)
	}
}

func TestDetect_IndependentPatternsOverlap(t *testing.T) {
	got := Detect("Review and critique the user's tweet, then provide constructive feedback.")

	for _, name := range []string{"peer_review", "reflexion", "task_decomposition"} {
		if _, ok := got[name]; !ok {
			t.Errorf("expected %s to be detected", name)
		}
	}
}
