package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/promptstudiohq/prompt-studio/internal/config"
)

// ErrMissingAPIKey marks a hosted provider configured without credentials.
// This is the only llm error that surfaces before an enhancement attempt.
var ErrMissingAPIKey = errors.New("missing api key")

const (
	defaultOllamaBaseURL     = "http://localhost:11434/v1"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultGroqBaseURL       = "https://api.groq.com/openai/v1"

	defaultOllamaModel     = "gemma:2b"
	defaultOpenRouterModel = "openrouter/auto"
	defaultGroqModel       = "llama-3.1-8b-instant"
	defaultClaudeModel     = "claude-sonnet-4-5-20250929"
)

// CallConfig carries the per-request provider selection. Empty fields fall
// back to the loaded config and then to built-in defaults.
type CallConfig struct {
	Provider string
	Model    string
	APIKey   string
}

// ProviderFor builds the provider a single call should use. Hosted providers
// (openrouter, groq, claude) fail with ErrMissingAPIKey when neither the call
// nor the config supplies a key; ollama never needs one.
func ProviderFor(cfg *config.Config, call CallConfig) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}

	name := strings.ToLower(strings.TrimSpace(call.Provider))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(cfg.LLM.DefaultProvider))
	}
	if name == "" {
		name = config.ProviderOllama
	}

	pcfg := cfg.LLM.Providers[name]

	apiKey := strings.TrimSpace(call.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(pcfg.APIKey)
	}
	model := strings.TrimSpace(call.Model)
	if model == "" {
		model = strings.TrimSpace(pcfg.Model)
	}
	baseURL := strings.TrimSpace(pcfg.BaseURL)

	switch name {
	case config.ProviderOllama:
		if baseURL == "" {
			baseURL = defaultOllamaBaseURL
		}
		if model == "" {
			model = defaultOllamaModel
		}
		return NewOpenAICompatProvider(name, apiKey, baseURL, model), nil

	case config.ProviderOpenRouter:
		if apiKey == "" {
			return nil, fmt.Errorf("llm: provider %q: %w", name, ErrMissingAPIKey)
		}
		if baseURL == "" {
			baseURL = defaultOpenRouterBaseURL
		}
		if model == "" {
			model = defaultOpenRouterModel
		}
		return NewOpenAICompatProvider(name, apiKey, baseURL, model), nil

	case config.ProviderGroq:
		if apiKey == "" {
			return nil, fmt.Errorf("llm: provider %q: %w", name, ErrMissingAPIKey)
		}
		if baseURL == "" {
			baseURL = defaultGroqBaseURL
		}
		if model == "" {
			model = defaultGroqModel
		}
		return NewOpenAICompatProvider(name, apiKey, baseURL, model), nil

	case config.ProviderClaude:
		if apiKey == "" {
			return nil, fmt.Errorf("llm: provider %q: %w", name, ErrMissingAPIKey)
		}
		if model == "" {
			model = defaultClaudeModel
		}
		return NewClaudeProvider(apiKey, baseURL, model), nil

	default:
		return nil, fmt.Errorf("llm: unknown provider %q", name)
	}
}

// DefaultProviderFromConfig builds the provider named by the config's
// default_provider with no per-call overrides.
func DefaultProviderFromConfig(cfg *config.Config) (Provider, error) {
	return ProviderFor(cfg, CallConfig{})
}

// MergeProviderFor gates the template-merge LLM path: the default local
// provider without an explicit key means "skip the LLM attempt" and is
// reported as (nil, nil). Anything else resolves through ProviderFor.
func MergeProviderFor(cfg *config.Config, call CallConfig) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}

	name := strings.ToLower(strings.TrimSpace(call.Provider))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(cfg.LLM.DefaultProvider))
	}
	if name == "" {
		name = config.ProviderOllama
	}

	if name == config.ProviderOllama && strings.TrimSpace(call.APIKey) == "" {
		return nil, nil
	}
	return ProviderFor(cfg, call)
}
