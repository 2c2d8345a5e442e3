package pattern

import (
	"context"
	"strconv"
	"strings"

	"github.com/promptstudiohq/prompt-studio/internal/llm"
)

// Refiner runs a second detection pass through an LLM, asking it to
// correct the rule-based result. It is strictly advisory: on any provider
// error, malformed response, or empty correction the rule-based result is
// returned unchanged. A refined set never overwrites partially.
type Refiner struct {
	Provider llm.Provider
}

const refinePromptTemplate = `You are an expert prompt engineering analyst. Review the following prompt and the patterns detected by an automated system.

**Original Prompt:**
{{PROMPT}}

**Automatically Detected Patterns:**
{{DETECTED}}

**Available Pattern Types:**
{{PATTERNS}}

**Your Task:**
Review the original prompt and the detected patterns. Then:

1. **Correct any mistakes** in the automated detection
2. **Add any missing patterns** from the available list that should be detected
3. **Remove patterns** that don't actually apply
4. **Adjust confidence scores** (0.0-1.0) based on how well each pattern fits
5. **Add evidence** for each pattern you include

**Response Format:**
Return a JSON object in this exact format:
{
    "patterns": {
        "pattern_name": {
            "confidence": 0.8,
            "evidence": ["evidence 1", "evidence 2"],
            "description": "pattern description",
            "category": "pattern category"
        }
    }
}

**Guidelines:**
- Only include patterns that are actually present in the prompt
- Focus on the most relevant and confident patterns (aim for 3-8 patterns max)
- Provide specific evidence from the prompt text
- Be conservative with high confidence scores (0.8+ only for very clear matches)
- Consider pattern interactions and hierarchies

**Important:** Respond ONLY with the JSON object, no other text.`

type refinedPayload struct {
	Patterns map[string]refinedMatch `json:"patterns"`
}

type refinedMatch struct {
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
}

// Refine asks the provider to correct rules. The boolean reports whether
// the returned result came from the LLM; false means rules came back
// untouched.
func (r *Refiner) Refine(ctx context.Context, prompt string, rules Result) (Result, bool) {
	if r == nil || r.Provider == nil || ctx == nil {
		return rules, false
	}

	meta := strings.ReplaceAll(refinePromptTemplate, "{{PROMPT}}", prompt)
	meta = strings.ReplaceAll(meta, "{{DETECTED}}", formatDetected(rules))
	meta = strings.ReplaceAll(meta, "{{PATTERNS}}", formatNames(Names()))

	resp, err := r.Provider.Complete(ctx, &llm.Request{
		Messages:  []llm.Message{{Role: "user", Content: meta}},
		MaxTokens: 8192,
	})
	if err != nil || resp == nil {
		return rules, false
	}

	var payload refinedPayload
	if err := llm.ParseJSON(llm.Text(resp), &payload); err != nil {
		return rules, false
	}

	refined := make(Result, len(payload.Patterns))
	for name, rm := range payload.Patterns {
		def, ok := Lookup(name)
		if !ok {
			// Never invent patterns the catalog does not know.
			continue
		}
		refined[name] = normalizeRefined(name, rm, def)
	}
	if len(refined) == 0 {
		return rules, false
	}
	return refined, true
}

func normalizeRefined(name string, rm refinedMatch, def *Definition) Match {
	confidence := rm.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	evidence := rm.Evidence
	if len(evidence) > maxEvidence {
		evidence = evidence[:maxEvidence]
	}

	description := strings.TrimSpace(rm.Description)
	if description == "" {
		description = def.Description
	}

	category := strings.TrimSpace(rm.Category)
	if !knownCategory(category) {
		category = def.Category
	}

	return Match{
		Pattern:     name,
		Confidence:  confidence,
		Evidence:    evidence,
		Description: description,
		Category:    category,
	}
}

func knownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// formatDetected renders the rule-based matches for the meta-prompt, two
// evidence snippets per pattern.
func formatDetected(result Result) string {
	var sb strings.Builder
	for i := range Catalog {
		m, ok := result[Catalog[i].Name]
		if !ok {
			continue
		}

		ev := m.Evidence
		if len(ev) > 2 {
			ev = ev[:2]
		}

		sb.WriteString("\nPattern: " + m.Pattern + "\n")
		sb.WriteString("Confidence: " + strconv.FormatFloat(m.Confidence, 'g', -1, 64) + "\n")
		sb.WriteString("Description: " + m.Description + "\n")
		sb.WriteString("Evidence: " + strings.Join(ev, ", ") + "\n")
		sb.WriteString("Category: " + m.Category + "\n")
		sb.WriteString("---\n")
	}
	return sb.String()
}

func formatNames(names []string) string {
	var sb strings.Builder
	for i, n := range names {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- " + n)
	}
	return sb.String()
}
