package factory

import (
	"fmt"
	"time"

	"arcana-be/pkg/llm"
	"arcana-be/pkg/llm/ollama"
	"arcana-be/pkg/llm/openai"
)

type ProviderConfig struct {
	Provider string // "openai" or "ollama"
	BaseURL  string
	APIKey   string
	Model    string
	// TimeoutSecs bounds one completion call; 0 keeps the provider's
	// built-in timeout.
	TimeoutSecs int
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "openai":
		provider := openai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
		if cfg.TimeoutSecs > 0 {
			provider.Client.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
		}
		return provider, nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		provider := ollama.NewOllamaProvider(baseURL, cfg.Model)
		if cfg.TimeoutSecs > 0 {
			provider.Client.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
