package template

import (
	"math"
	"sort"

	"github.com/promptstudiohq/prompt-studio/internal/pattern"
)

// Suggestion ranks one template against a detection result. Score is the
// share of total detected confidence the template's patterns account for,
// scaled to 0-100 and rounded to two decimals. A perfectly matched
// template still scores below 100 when the prompt triggered unrelated
// patterns.
type Suggestion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Suggest ranks affinity-mapped templates for the detected patterns.
// Results sort by score descending; ties break by lexical slug order to
// keep the output deterministic. An empty result, or one whose
// confidences sum to zero, yields no suggestions.
func Suggest(result pattern.Result) []Suggestion {
	if len(result) == 0 {
		return nil
	}

	total := 0.0
	for _, m := range result {
		total += m.Confidence
	}
	if total == 0 {
		return nil
	}

	candidates := make(map[string]bool)
	for name := range result {
		for _, slug := range Affinity[name] {
			candidates[slug] = true
		}
	}

	suggestions := make([]Suggestion, 0, len(candidates))
	for slug := range candidates {
		matched := 0.0
		for name, m := range result {
			if slugListed(Affinity[name], slug) {
				matched += m.Confidence
			}
		}
		suggestions = append(suggestions, Suggestion{
			Name:  slug,
			Score: math.Round(matched/total*100*100) / 100,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Name < suggestions[j].Name
	})

	return suggestions
}

func slugListed(slugs []string, slug string) bool {
	for _, s := range slugs {
		if s == slug {
			return true
		}
	}
	return false
}
