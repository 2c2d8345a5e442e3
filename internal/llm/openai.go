package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAICompatProvider talks to any OpenAI-compatible chat completion
// endpoint. Ollama (local), OpenRouter, and Groq all speak this dialect; only
// the base URL, key requirements, and default model differ.
type OpenAICompatProvider struct {
	name   string
	client *openai.Client
	model  string
}

func NewOpenAICompatProvider(name, apiKey, baseURL, model string) *OpenAICompatProvider {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}

	return &OpenAICompatProvider{
		name:   strings.ToLower(strings.TrimSpace(name)),
		client: openai.NewClientWithConfig(cfg),
		model:  strings.TrimSpace(model),
	}
}

func (p *OpenAICompatProvider) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

func (p *OpenAICompatProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: openai-compat: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: openai-compat: nil context")
	}
	if req == nil {
		return nil, errors.New("llm: openai-compat: nil request")
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if system := strings.TrimSpace(req.System); system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    normalizeChatRole(m.Role),
			Content: m.Content,
		})
	}

	r := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    msgs,
		Temperature: float32(req.Temperature),
	}
	if req.MaxTokens > 0 {
		r.MaxTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: openai-compat: empty choices")
	}

	choice := resp.Choices[0]
	out := &Response{
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	if strings.TrimSpace(choice.Message.Content) != "" {
		out.Content = append(out.Content, ContentBlock{
			Type: "text",
			Text: choice.Message.Content,
		})
	}

	return out, nil
}

func normalizeChatRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case openai.ChatMessageRoleSystem,
		openai.ChatMessageRoleUser,
		openai.ChatMessageRoleAssistant:
		return role
	default:
		return openai.ChatMessageRoleUser
	}
}
