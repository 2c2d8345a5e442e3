package pattern

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Report formats accepted by Summarize. Anything else falls back to text.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Summarize renders a grouped view of a detection result. Patterns are
// grouped by category in canonical order and sorted by confidence
// descending within each group.
func Summarize(prompt string, result Result, format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return renderJSON(prompt, result)
	case FormatMarkdown:
		return renderMarkdown(prompt, result)
	default:
		return renderText(prompt, result)
	}
}

func renderText(prompt string, result Result) string {
	if len(result) == 0 {
		return "No clear prompt patterns detected."
	}

	rule := strings.Repeat("=", 60)

	var sb strings.Builder
	sb.WriteString(rule)
	sb.WriteByte('\n')
	sb.WriteString("PROMPT PATTERN ANALYSIS\n")
	sb.WriteString(rule)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Prompt Length: %d characters\n", utf8.RuneCountInString(prompt))
	fmt.Fprintf(&sb, "Patterns Detected: %d\n\n", len(result))

	for _, cat := range Categories {
		matches := matchesInCategory(result, cat)
		if len(matches) == 0 {
			continue
		}

		sb.WriteByte('\n')
		sb.WriteString(rule)
		sb.WriteByte('\n')
		fmt.Fprintf(&sb, "📂 %s PATTERNS\n", strings.ToUpper(cat))
		sb.WriteString(rule)
		sb.WriteString("\n\n")

		for _, m := range matches {
			fmt.Fprintf(&sb, "📌 %s\n", strings.ToUpper(strings.ReplaceAll(m.Pattern, "_", " ")))
			fmt.Fprintf(&sb, "   Confidence: %.2f | %s\n", m.Confidence, confidenceBar(m.Confidence))
			fmt.Fprintf(&sb, "   Description: %s\n", m.Description)
			if len(m.Evidence) > 0 {
				sb.WriteString("   Evidence:\n")
				for _, ev := range m.Evidence {
					fmt.Fprintf(&sb, "      • %s\n", ev)
				}
			}
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

type jsonReport struct {
	PromptLength     int                    `json:"prompt_length"`
	PatternsDetected int                    `json:"patterns_detected"`
	Patterns         map[string]jsonPattern `json:"patterns"`
}

type jsonPattern struct {
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Evidence    []string `json:"evidence"`
}

// renderJSON emits the wire form of a result: confidence rounded to two
// decimals and evidence truncated to three entries.
func renderJSON(prompt string, result Result) string {
	report := jsonReport{
		PromptLength:     utf8.RuneCountInString(prompt),
		PatternsDetected: len(result),
		Patterns:         make(map[string]jsonPattern, len(result)),
	}
	for name, m := range result {
		ev := m.Evidence
		if len(ev) > maxEvidence {
			ev = ev[:maxEvidence]
		}
		report.Patterns[name] = jsonPattern{
			Confidence:  math.Round(m.Confidence*100) / 100,
			Description: m.Description,
			Category:    m.Category,
			Evidence:    ev,
		}
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

func renderMarkdown(prompt string, result Result) string {
	var sb strings.Builder
	sb.WriteString("# Prompt Pattern Analysis\n\n")
	fmt.Fprintf(&sb, "**Prompt Length:** %d characters\n\n", utf8.RuneCountInString(prompt))
	fmt.Fprintf(&sb, "**Patterns Detected:** %d\n\n", len(result))

	for _, cat := range Categories {
		matches := matchesInCategory(result, cat)
		if len(matches) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "\n## %s Patterns\n\n", cat)

		for _, m := range matches {
			fmt.Fprintf(&sb, "### %s\n\n", titleWords(m.Pattern))
			fmt.Fprintf(&sb, "- **Confidence:** %.2f\n", m.Confidence)
			fmt.Fprintf(&sb, "- **Description:** %s\n\n", m.Description)
			if len(m.Evidence) > 0 {
				sb.WriteString("**Evidence:**\n")
				for _, ev := range m.Evidence {
					fmt.Fprintf(&sb, "- %s\n", ev)
				}
			}
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

// matchesInCategory returns result's matches carrying the given category,
// sorted by confidence descending with catalog order breaking ties.
func matchesInCategory(result Result, category string) []Match {
	var matches []Match
	for i := range Catalog {
		m, ok := result[Catalog[i].Name]
		if !ok || m.Category != category {
			continue
		}
		matches = append(matches, m)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

func confidenceBar(confidence float64) string {
	filled := int(confidence * 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func titleWords(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
