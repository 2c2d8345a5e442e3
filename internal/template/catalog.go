package template

import (
	"regexp"
	"strings"
	"sync"
)

// Resolved is a template body with its derived variable metadata.
// Variables are recomputed from the body on every resolve rather than
// stored alongside it, so the two can not drift apart.
type Resolved struct {
	Slug          string   `json:"slug"`
	Content       string   `json:"content"`
	Variables     []string `json:"variables"`
	VariableCount int      `json:"variable_count"`
}

// Affinity maps pattern names to the template slugs they recommend.
var Affinity = map[string][]string{
	"rag":              {"rlm/rag-prompt", "langchain-ai/retrieval-qa-chat"},
	"react":            {"hwchase17/react-chat", "hwchase17/react-json"},
	"chain_of_thought": {"rlm/rag-prompt-cot", "chain_of_thought"},
	"role_prompting":   {"hwchase17/react-chat", "rlm/rag-prompt"},
}

type entry struct {
	slug string
	body string
}

// builtins is the static template registry. Slice order is the registry
// order; the similarity fallback scans slugs in this order.
var builtins = []entry{
	{
		slug: "hwchase17/react-chat",
		body: `Thought: {thought}
Action: {action}
Observation: {observation}

... (repeat until task is solved)

Final Answer: {final_answer}`,
	},
	{
		slug: "rlm/rag-prompt",
		body: `Use the following pieces of context to answer the question at the end.

Context:
{context}

Question: {question}

Helpful Answer:`,
	},
	{
		slug: "hwchase17/react-json",
		body: `Thought: {thought}
Action: {action}
Observation: {observation}

... (repeat as needed)

Final Answer: {final_answer}`,
	},
	{
		slug: "rlm/rag-prompt-cot",
		body: `Use the following pieces of context to answer the question at the end. Let's think step by step.

Context:
{context}

Question: {question}

Step by step reasoning:
1. {step1}
2. {step2}
3. {step3}

Final Answer:`,
	},
	{
		slug: "langchain-ai/retrieval-qa-chat",
		body: `You are an AI assistant helping answer questions based on provided context.

Context:
{context}

Question: {question}

Please provide a helpful and accurate answer based on the context above.`,
	},
	{
		slug: "hwchase17/react",
		body: `Question: {question}

Thought: {thought}
Action: {action}
Observation: {observation}

Final Answer: {answer}`,
	},
	{
		slug: "chain_of_thought",
		body: `Let's solve this step by step:

1. First, understand the problem
2. Break it down into smaller parts
3. Work through each part systematically
4. Combine the results

Question: {question}

Answer: {answer}`,
	},
	{
		slug: "few_shot",
		body: `Here are some examples:

Example 1:
Input: {example1_input}
Output: {example1_output}

Example 2:
Input: {example2_input}
Output: {example2_output}

Now solve this:
Input: {input}
Output:`,
	},
	{
		slug: "role_prompting",
		body: `You are a {role} with expertise in {domain}.

Task: {task}

Instructions: {instructions}

Please provide your response:`,
	},
}

var builtinBySlug = buildBuiltinIndex()

func buildBuiltinIndex() map[string]string {
	idx := make(map[string]string, len(builtins))
	for _, e := range builtins {
		idx[e.slug] = e.body
	}
	return idx
}

// cache memoizes resolved bodies by slug. Writes are idempotent: every
// writer computes the same value for the same slug, so lost writes on
// concurrent first access are harmless.
var cache sync.Map

// Slugs returns the built-in template slugs in registry order.
func Slugs() []string {
	out := make([]string, len(builtins))
	for i, e := range builtins {
		out[i] = e.slug
	}
	return out
}

// Resolve returns the template body and derived metadata for slug.
// Unknown slugs resolve to a synthesized placeholder body, never an
// error.
func Resolve(slug string) Resolved {
	content := contentFor(slug)
	variables := Variables(content)
	if len(variables) == 0 {
		variables = []string{"input"}
	}
	return Resolved{
		Slug:          slug,
		Content:       content,
		Variables:     variables,
		VariableCount: len(variables),
	}
}

func contentFor(slug string) string {
	if v, ok := cache.Load(slug); ok {
		return v.(string)
	}

	content, ok := builtinBySlug[slug]
	if !ok {
		content = similarContent(slug)
	}
	if content == "" {
		content = "Template: " + slug + "\n\n{input}\n\n[Template content not available]"
	}

	cache.Store(slug, content)
	return content
}

// similarContent falls back to a known template whose slug shares a
// substring with the requested one.
func similarContent(slug string) string {
	if slug == "" {
		return ""
	}
	for _, e := range builtins {
		if strings.Contains(e.slug, slug) || strings.Contains(slug, e.slug) {
			return e.body
		}
	}
	return ""
}

var placeholderRE = regexp.MustCompile(`\{([^}]+)\}`)

// Variables lists the unique {placeholder} identifiers in body, in first
// appearance order.
func Variables(body string) []string {
	matches := placeholderRE.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
