package pattern

import "regexp"

// Pattern categories. Reports group patterns under these headings.
const (
	CategoryBasic      = "Basic"
	CategoryReasoning  = "Reasoning"
	CategoryAgent      = "Agent"
	CategoryRetrieval  = "Retrieval"
	CategoryControl    = "Control"
	CategoryMeta       = "Meta"
	CategoryMultimodal = "Multimodal"
	CategoryAnalysis   = "Analysis"
)

// Categories is the canonical category ordering for grouped output.
var Categories = []string{
	CategoryBasic,
	CategoryReasoning,
	CategoryAgent,
	CategoryRetrieval,
	CategoryControl,
	CategoryMeta,
	CategoryMultimodal,
	CategoryAnalysis,
}

// Names of the two patterns the detector treats as a pair: zero_shot is
// emitted only when no few_shot trigger matches.
const (
	ZeroShot = "zero_shot"
	FewShot  = "few_shot"
)

// Definition is a catalog entry: a named prompt-engineering technique,
// the lexical triggers that count as evidence for it, and display data.
type Definition struct {
	Name     string
	Triggers []*regexp.Regexp
	// NegativeTriggers record the example-like phrasing carried by the
	// zero_shot entry. Suppression itself is keyed off the few_shot
	// triggers, not this list.
	NegativeTriggers []*regexp.Regexp
	Description      string
	Category         string
}

// Catalog is the static pattern registry. It is immutable after process
// start; slice order is the canonical pattern order.
var Catalog = []Definition{
	{
		Name:             ZeroShot,
		NegativeTriggers: triggers(`example`, `for instance`, `like this`),
		Description:      "Direct task without examples",
		Category:         CategoryBasic,
	},
	{
		Name: FewShot,
		Triggers: triggers(`here are examples`, `example:`, `for instance`,
			`like this:`, `sample:`, `input:.*output:`),
		Description: "Provides examples before the task",
		Category:    CategoryBasic,
	},
	{
		Name:        "role_prompting",
		Triggers:    triggers(`you are a`, `act as`, `you are an`, `assume the role`),
		Description: "Assigns a specific role or persona",
		Category:    CategoryBasic,
	},
	{
		Name: "chain_of_thought",
		Triggers: triggers(`step by step`, `think through`, `reason about`,
			`let's think`, `work through`, `explain your reasoning`),
		Description: "Encourages step-by-step reasoning (CoT)",
		Category:    CategoryReasoning,
	},
	{
		Name: "self_consistency",
		Triggers: triggers(`multiple.*reasoning`, `different.*approaches`,
			`various.*solutions`, `compare.*answers`),
		Description: "Generates multiple reasoning paths",
		Category:    CategoryReasoning,
	},
	{
		Name: "tree_of_thoughts",
		Triggers: triggers(`explore.*options`, `branch.*possibilities`,
			`different paths`, `evaluate.*alternatives`),
		Description: "Explores multiple reasoning branches (ToT)",
		Category:    CategoryReasoning,
	},
	{
		Name: "generate_knowledge",
		Triggers: triggers(`first.*generate.*knowledge`, `what do you know about`,
			`provide background`, `recall.*information`),
		Description: "Generates relevant knowledge before answering",
		Category:    CategoryReasoning,
	},
	{
		Name: "react",
		Triggers: triggers(`thought:`, `action:`, `observation:`,
			`reason.*then.*act`, `plan.*execute`),
		Description: "Reasoning + Acting pattern (ReAct)",
		Category:    CategoryAgent,
	},
	{
		Name: "reflexion",
		Triggers: triggers(`reflect on`, `self-reflect`, `evaluate your`,
			`what went wrong`, `how to improve`, `self-assess`,
			`analyze.*performance`, `critique.*yourself`,
			`improve.*reasoning`, `better.*response`,
			`self-critique`, `critique your answer`,
			`review and critique`,
			`identify.*errors`, `logical.*errors`),
		Description: "AI self-reflection: AI evaluates its own outputs and performance",
		Category:    CategoryAgent,
	},
	{
		Name: "automatic_reasoning",
		Triggers: triggers(`use tools`, `available functions`, `call.*function`,
			`external tools`),
		Description: "Automatic Reasoning and Tool-use (ART)",
		Category:    CategoryAgent,
	},
	{
		Name: "rag",
		Triggers: triggers(`based on.*context`, `using.*document`, `retrieve`,
			`search.*then.*answer`, `given.*information`),
		Description: "Retrieval Augmented Generation (RAG)",
		Category:    CategoryRetrieval,
	},
	{
		Name: "active_prompt",
		Triggers: triggers(`most uncertain`, `need clarification`, `ask questions`,
			`what else.*need`),
		Description: "Actively seeks clarification",
		Category:    CategoryRetrieval,
	},
	{
		Name: "directional_stimulus",
		Triggers: triggers(`focus on`, `emphasize`, `pay attention to`,
			`highlight`, `prioritize`),
		Description: "Guides attention to specific aspects",
		Category:    CategoryControl,
	},
	{
		Name: "constraint_setting",
		Triggers: triggers(`must include`, `do not`, `avoid`, `only`,
			`ensure that`, `specifically`, `focus on`, `focusing on`),
		Description: "Sets boundaries or requirements",
		Category:    CategoryControl,
	},
	{
		Name: "task_decomposition",
		Triggers: triggers(`review and critique`, `provide.*feedback`, `offer.*suggestions`,
			`break.*down`, `step by step`, `analyze.*then`),
		Description: "Breaks down complex tasks into specific components",
		Category:    CategoryControl,
	},
	{
		Name: "output_formatting",
		Triggers: triggers(`format`, `structure`, `provide in`, `output as`,
			`json`, `table`, `list`, `markdown`),
		Description: "Specifies desired output format",
		Category:    CategoryControl,
	},
	{
		Name: "meta_prompting",
		Triggers: triggers(`improve.*prompt`, `better.*question`, `rewrite.*query`,
			`optimize.*instruction`),
		Description: "Prompts about prompts",
		Category:    CategoryMeta,
	},
	{
		Name: "automatic_prompt_engineer",
		Triggers: triggers(`generate.*prompt`, `create.*instruction`,
			`design.*template`),
		Description: "Automatic Prompt Engineering (APE)",
		Category:    CategoryMeta,
	},
	{
		Name: "multimodal_cot",
		Triggers: triggers(`analyze.*image`, `visual.*reasoning`, `describe.*then`,
			`based on.*picture`),
		Description: "Chain-of-Thought with multimodal inputs",
		Category:    CategoryMultimodal,
	},
	{
		Name: "task_specification",
		Triggers: triggers(`generate`, `create`, `write`, `analyze`,
			`review`, `explain`, `summarize`),
		Description: "Clearly defines the task",
		Category:    CategoryBasic,
	},
	{
		Name: "iterative_refinement",
		Triggers: triggers(`if.*feedback`, `refine`, `enhance`, `iterate`,
			`improve.*previous`),
		Description: "Includes feedback loop instructions",
		Category:    CategoryControl,
	},
	{
		Name: "persona_context",
		Triggers: triggers(`known for`, `expert in`, `specialized`,
			`with experience`),
		Description: "Adds context or credentials to the role",
		Category:    CategoryBasic,
	},
	{
		Name: "goal_oriented",
		Triggers: triggers(`goal`, `objective`, `aim`, `purpose`,
			`for maximum`, `to ensure`),
		Description: "Defines success criteria",
		Category:    CategoryControl,
	},
	{
		Name:        "audience_awareness",
		Triggers:    triggers(`audience`, `reader`, `for.*users`, `target`),
		Description: "Considers the end audience",
		Category:    CategoryControl,
	},
	{
		Name: "peer_review",
		Triggers: triggers(`review.*tweet`, `critique.*content`, `feedback.*post`,
			`analyze.*writing`, `evaluate.*message`, `assess.*communication`,
			`content.*review`, `writing.*feedback`, `social.*media.*analysis`,
			`provide.*feedback`, `constructive.*criticism`,
			`review and critique`, `provide constructive feedback`,
			`offer specific suggestions`, `make.*compelling`,
			`enhancing.*depth`, `overall.*impact`),
		Description: "Content critique: AI analyzes and evaluates external content",
		Category:    CategoryAnalysis,
	},
}

var catalogByName = buildIndex()

func buildIndex() map[string]*Definition {
	idx := make(map[string]*Definition, len(Catalog))
	for i := range Catalog {
		idx[Catalog[i].Name] = &Catalog[i]
	}
	return idx
}

// Lookup returns the catalog entry for name.
func Lookup(name string) (*Definition, bool) {
	def, ok := catalogByName[name]
	return def, ok
}

// Names returns every pattern name in catalog order.
func Names() []string {
	out := make([]string, len(Catalog))
	for i := range Catalog {
		out[i] = Catalog[i].Name
	}
	return out
}

func triggers(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}
