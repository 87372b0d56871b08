package llm

import (
	"fmt"
	"time"

	"mathquest/internal/platform/config"
)

// Config selects and configures the generator backend.
type Config struct {
	// Provider is one of "gemini", "anthropic", "openai", "openrouter", "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// Timeout bounds a single generator call.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ConfigFrom extracts the generator settings from the application config.
func ConfigFrom(c *config.Config) Config {
	return Config{
		Provider:   c.LLMProvider,
		Anthropic:  AnthropicConfig{APIKey: c.AnthropicAPIKey, Model: c.AnthropicModel},
		OpenAI:     OpenAIConfig{APIKey: c.OpenAIAPIKey, Model: c.OpenAIModel, BaseURL: c.OpenAIBaseURL},
		Gemini:     GeminiConfig{APIKey: c.GeminiAPIKey, Model: c.GeminiModel},
		OpenRouter: OpenRouterConfig{APIKey: c.OpenRouterAPIKey, Model: c.OpenRouterModel},
		Timeout:    c.LLMTimeout,
	}
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY or GOOGLE_API_KEY is required for the gemini provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
