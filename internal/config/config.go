package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

// Provider names understood by the llm factory.
const (
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
	ProviderGroq       = "groq"
	ProviderClaude     = "claude"
)

const defaultRequestTimeout = 60 * time.Second

type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
}

type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider,omitempty"`
	RequestTimeout  time.Duration             `yaml:"request_timeout,omitempty"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

type StorageConfig struct {
	Type string `yaml:"type,omitempty"` // "sqlite" or "memory"
	Path string `yaml:"path,omitempty"` // SQLite file path
}

// Load reads the YAML config at path and applies environment overrides.
// The default path is optional: a missing file yields the built-in defaults,
// so the server runs against local inference with zero configuration.
func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultPath:
		// No config file is fine; defaults below cover local inference.
	default:
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = make(map[string]ProviderConfig)
	}

	if strings.TrimSpace(cfg.LLM.DefaultProvider) == "" {
		cfg.LLM.DefaultProvider = ProviderOllama
	}
	if cfg.LLM.RequestTimeout <= 0 {
		cfg.LLM.RequestTimeout = defaultRequestTimeout
	}

	if v := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")); v != "" {
		p := cfg.LLM.Providers[ProviderOpenRouter]
		p.APIKey = v
		cfg.LLM.Providers[ProviderOpenRouter] = p
	}
	if v := strings.TrimSpace(os.Getenv("GROQ_API_KEY")); v != "" {
		p := cfg.LLM.Providers[ProviderGroq]
		p.APIKey = v
		cfg.LLM.Providers[ProviderGroq] = p
	}
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		p := cfg.LLM.Providers[ProviderClaude]
		p.APIKey = v
		cfg.LLM.Providers[ProviderClaude] = p
	}
	if v := strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL")); v != "" {
		p := cfg.LLM.Providers[ProviderOllama]
		p.BaseURL = v
		cfg.LLM.Providers[ProviderOllama] = p
	}

	return &cfg, nil
}
