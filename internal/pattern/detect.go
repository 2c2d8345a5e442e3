package pattern

import (
	"strings"
	"unicode/utf8"
)

// Match is one detected pattern with its supporting evidence.
type Match struct {
	Pattern     string   `json:"pattern"`
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
}

// Result maps pattern name to its match. Absence means the pattern was
// not detected; a zero-confidence entry is never emitted.
type Result map[string]Match

const (
	confidencePerHit = 0.35
	evidenceWindow   = 30
	maxEvidence      = 3

	zeroShotConfidence = 0.7
	zeroShotEvidence   = "No clear examples found, suggesting a zero-shot approach."
)

// Detect scans prompt against the catalog and scores every pattern whose
// triggers appear. Each trigger hit adds a fixed confidence increment,
// capped at 1.0. Patterns are scored independently and may overlap; the
// one exception is zero_shot, which is emitted at a fixed confidence only
// when no few_shot trigger matches. An empty prompt yields an empty
// result.
func Detect(prompt string) Result {
	detected := make(Result)
	if prompt == "" {
		return detected
	}

	lower := strings.ToLower(prompt)
	// Trigger offsets are byte positions in the lowered text. Evidence is
	// cut from the original text when lowering preserved byte length,
	// otherwise from the lowered copy so the offsets stay valid.
	source := prompt
	if len(lower) != len(prompt) {
		source = lower
	}

	for i := range Catalog {
		def := &Catalog[i]

		if def.Name == ZeroShot {
			if !fewShotApplies(lower) {
				detected[ZeroShot] = Match{
					Pattern:     ZeroShot,
					Confidence:  zeroShotConfidence,
					Evidence:    []string{zeroShotEvidence},
					Description: def.Description,
					Category:    def.Category,
				}
			}
			continue
		}

		var evidence []string
		confidence := 0.0
		for _, trig := range def.Triggers {
			for _, loc := range trig.FindAllStringIndex(lower, -1) {
				evidence = append(evidence, snippet(source, loc[0], loc[1]))
				confidence += confidencePerHit
			}
		}
		if len(evidence) == 0 {
			continue
		}

		if confidence > 1.0 {
			confidence = 1.0
		}
		if len(evidence) > maxEvidence {
			evidence = evidence[:maxEvidence]
		}

		detected[def.Name] = Match{
			Pattern:     def.Name,
			Confidence:  confidence,
			Evidence:    evidence,
			Description: def.Description,
			Category:    def.Category,
		}
	}

	return detected
}

func fewShotApplies(lower string) bool {
	few, ok := Lookup(FewShot)
	if !ok {
		return false
	}
	for _, trig := range few.Triggers {
		if trig.MatchString(lower) {
			return true
		}
	}
	return false
}

// snippet cuts a window of surrounding context around a trigger hit,
// widening the cut points to rune boundaries.
func snippet(text string, start, end int) string {
	start -= evidenceWindow
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}

	end += evidenceWindow
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	return "..." + strings.TrimSpace(text[start:end]) + "..."
}
