package template

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/promptstudiohq/prompt-studio/internal/llm"
)

// Merge output sources.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
	SourceOriginal = "original"
)

// MergeResult is a filled template tagged with the path that produced it:
// the LLM path, the deterministic fallback chain, or the original prompt
// returned untouched.
type MergeResult struct {
	Output string `json:"merged_template"`
	Source string `json:"source"`
}

// Merger fills a template's variables from a user prompt. The LLM path is
// attempted only when a provider is configured; any failure there falls
// through to the deterministic fallback chain. Merge never fails outward.
type Merger struct {
	Provider llm.Provider
}

const mergePromptTemplate = `You are an expert prompt engineer. Given the user's prompt and a template with variables, intelligently extract information from the user's prompt and fill in the template variables.

**User's Prompt:**
{{USER_PROMPT}}

**Template:**
{{TEMPLATE}}

**Variables to fill:** {{VARIABLES}}

**Instructions:**
1. Analyze the user's prompt to understand its intent, context, and key elements
2. For each variable in the template, determine what content from the user's prompt should fill it
3. If a variable doesn't have a clear mapping, use your best judgment to infer appropriate content
4. Return only the completed template with variables filled in
5. Maintain the template's structure and formatting

**Response Format:**
Return only the filled-in template text, no explanations or additional content.`

const (
	questionLimit     = 200
	snippetLimit      = 100
	contextMin        = 50
	maxHeuristicFills = 3
)

const answerPlaceholder = "[Answer will be generated based on the above]"

// Merge fills slug's template from userPrompt.
func (m *Merger) Merge(ctx context.Context, userPrompt, slug string) MergeResult {
	resolved := Resolve(slug)
	if resolved.Content == "" || len(resolved.Variables) == 0 {
		return MergeResult{Output: userPrompt, Source: SourceOriginal}
	}

	if m != nil && m.Provider != nil && ctx != nil {
		if out, ok := m.llmMerge(ctx, userPrompt, resolved); ok {
			return MergeResult{Output: out, Source: SourceLLM}
		}
	}

	return MergeResult{Output: fallbackMerge(userPrompt, resolved), Source: SourceFallback}
}

func (m *Merger) llmMerge(ctx context.Context, userPrompt string, resolved Resolved) (string, bool) {
	quoted := make([]string, len(resolved.Variables))
	for i, v := range resolved.Variables {
		quoted[i] = `"` + v + `"`
	}

	prompt := strings.ReplaceAll(mergePromptTemplate, "{{USER_PROMPT}}", userPrompt)
	prompt = strings.ReplaceAll(prompt, "{{TEMPLATE}}", resolved.Content)
	prompt = strings.ReplaceAll(prompt, "{{VARIABLES}}", strings.Join(quoted, ", "))

	resp, err := m.Provider.Complete(ctx, &llm.Request{
		Messages:  []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens: 4096,
	})
	if err != nil || resp == nil {
		return "", false
	}

	merged := strings.TrimSpace(llm.Text(resp))
	if !validMerge(merged, resolved.Variables) {
		return "", false
	}
	return merged, true
}

// validMerge is a coarse sanity check: the output must be non-trivial and
// mention at least one variable name as a plain substring. It can both
// over- and under-accept; the fallback chain backs it up.
func validMerge(merged string, variables []string) bool {
	if len(merged) <= 10 {
		return false
	}
	for _, v := range variables {
		if strings.Contains(merged, v) {
			return true
		}
	}
	return false
}

// fallbackMerge is the deterministic substitution chain. The common
// variables question, input, and context are filled first, in that fixed
// order; semantic heuristics then fill up to three of the remaining
// variables in template order. Anything beyond that cap stays as a
// literal {name} placeholder.
func fallbackMerge(userPrompt string, resolved Resolved) string {
	merged := resolved.Content

	question := userPrompt
	if utf8.RuneCountInString(question) > questionLimit {
		question = truncateRunes(question, questionLimit) + "..."
	}
	merged = strings.ReplaceAll(merged, "{question}", question)
	merged = strings.ReplaceAll(merged, "{input}", userPrompt)
	if utf8.RuneCountInString(userPrompt) > contextMin {
		merged = strings.ReplaceAll(merged, "{context}", userPrompt)
	}

	filled := 0
	for _, v := range resolved.Variables {
		if filled >= maxHeuristicFills {
			break
		}
		placeholder := "{" + v + "}"
		if !strings.Contains(merged, placeholder) {
			continue
		}

		var value string
		switch strings.ToLower(v) {
		case "instruction", "task", "query":
			value = truncateRunes(userPrompt, snippetLimit)
		case "answer", "response", "output":
			value = answerPlaceholder
		default:
			value = "[Content for " + v + "]"
		}

		merged = strings.ReplaceAll(merged, placeholder, value)
		filled++
	}

	return merged
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
