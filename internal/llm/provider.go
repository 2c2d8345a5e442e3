package llm

import "context"

// Provider is a single-turn completion capability. Implementations must honor
// the caller's context deadline and must not retry on their own: the engine
// treats one attempt per request as the contract.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Messages    []Message
	System      string
	MaxTokens   int
	Temperature float64
}

type ContentBlock struct {
	Type string `json:"type"` // currently always "text"
	Text string `json:"text,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type Response struct {
	Content    []ContentBlock
	Usage      Usage
	StopReason string
}
