package optimizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/promptstudiohq/prompt-studio/internal/llm"
)

const defaultMaxDemos = 4

// Optimizer builds a few-shot variant of a prompt from labeled examples.
// For each candidate example it asks the model to answer the question with
// the original prompt as instructions, and keeps the pair only when the
// model reproduces the labeled answer. Kept pairs become demonstrations
// appended to the prompt.
type Optimizer struct {
	Provider llm.Provider
	MaxDemos int // default: 4
}

// OptimizeResult carries the optimized prompt and the demonstrations that
// survived bootstrapping.
type OptimizeResult struct {
	OptimizedPrompt string
	Demos           []Example
	Attempted       int
}

// Optimize bootstraps demonstrations from examples and appends them to
// originalPrompt. Provider errors surface; this path has no fallback
// output.
func (o *Optimizer) Optimize(ctx context.Context, originalPrompt string, examples []Example) (*OptimizeResult, error) {
	if o == nil || o.Provider == nil {
		return nil, errors.New("optimizer: nil provider")
	}
	if ctx == nil {
		return nil, errors.New("optimizer: nil context")
	}
	if strings.TrimSpace(originalPrompt) == "" {
		return nil, errors.New("optimizer: empty prompt")
	}

	maxDemos := o.MaxDemos
	if maxDemos <= 0 {
		maxDemos = defaultMaxDemos
	}

	result := &OptimizeResult{}
	for _, ex := range examples {
		if len(result.Demos) >= maxDemos {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		question := strings.TrimSpace(ex.Question)
		if question == "" {
			continue
		}
		result.Attempted++

		resp, err := o.Provider.Complete(ctx, &llm.Request{
			System:      originalPrompt,
			Messages:    []llm.Message{{Role: "user", Content: question}},
			MaxTokens:   1024,
			Temperature: 0,
		})
		if err != nil {
			return nil, fmt.Errorf("optimizer: %w", err)
		}

		if answersMatch(llm.Text(resp), ex.Answer) {
			result.Demos = append(result.Demos, Example{Question: question, Answer: strings.TrimSpace(ex.Answer)})
		}
	}

	result.OptimizedPrompt = renderOptimized(originalPrompt, result.Demos)
	return result, nil
}

// answersMatch is a normalized exact-match metric: case-insensitive after
// trimming space and surrounding punctuation.
func answersMatch(got, want string) bool {
	g := normalizeAnswer(got)
	return g != "" && g == normalizeAnswer(want)
}

func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(s, "\"'.,!? ")
}

func renderOptimized(originalPrompt string, demos []Example) string {
	var sb strings.Builder
	sb.WriteString(originalPrompt)
	sb.WriteString("\n\n--- Examples ---\n")
	for _, d := range demos {
		sb.WriteString("Question: ")
		sb.WriteString(d.Question)
		sb.WriteByte('\n')
		sb.WriteString("Answer: ")
		sb.WriteString(d.Answer)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
