package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig
}

type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ApplyEnv overlays QUIZ_* variables onto cfg. A bare QUIZ_LLM_API_KEY is
// assigned to whichever provider is selected.
func (c *Config) ApplyEnv() {
	if p := os.Getenv("QUIZ_LLM_PROVIDER"); p != "" {
		c.Provider = p
	}
	if m := os.Getenv("QUIZ_LLM_MODEL"); m != "" {
		c.setModel(m)
	}
	if k := os.Getenv("QUIZ_LLM_API_KEY"); k != "" {
		c.setAPIKey(k)
	}
	if u := os.Getenv("QUIZ_OPENAI_BASE_URL"); u != "" {
		c.OpenAI.BaseURL = u
	}
}

// DiscoverAPIKey fills the selected provider's key from its standard
// environment variable (OPENAI_API_KEY etc.) when no key was configured.
func (c *Config) DiscoverAPIKey() {
	if c.apiKey() != "" {
		return
	}
	env := map[string]string{
		"openai":     "OPENAI_API_KEY",
		"anthropic":  "ANTHROPIC_API_KEY",
		"gemini":     "GEMINI_API_KEY",
		"openrouter": "OPENROUTER_API_KEY",
	}[c.Provider]
	if env == "" {
		return
	}
	if k := os.Getenv(env); k != "" {
		c.setAPIKey(k)
	}
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "gemini", "openrouter":
		if c.apiKey() == "" {
			return fmt.Errorf("an API key is required for the %s provider (set QUIZ_LLM_API_KEY)", c.Provider)
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

func (c Config) apiKey() string {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic.APIKey
	case "openai":
		return c.OpenAI.APIKey
	case "gemini":
		return c.Gemini.APIKey
	case "openrouter":
		return c.OpenRouter.APIKey
	}
	return ""
}

func (c *Config) setAPIKey(k string) {
	switch c.Provider {
	case "anthropic":
		c.Anthropic.APIKey = k
	case "openai":
		c.OpenAI.APIKey = k
	case "gemini":
		c.Gemini.APIKey = k
	case "openrouter":
		c.OpenRouter.APIKey = k
	}
}

func (c *Config) setModel(m string) {
	switch c.Provider {
	case "anthropic":
		c.Anthropic.Model = m
	case "openai":
		c.OpenAI.Model = m
	case "gemini":
		c.Gemini.Model = m
	case "openrouter":
		c.OpenRouter.Model = m
	}
}
