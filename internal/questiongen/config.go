package questiongen

import "time"

// Config controls LLM batch generation.
type Config struct {
	// MaxTokens caps the response size.
	MaxTokens int

	Temperature float64

	// Timeout bounds one batch request, retries included. Zero means no limit.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:   8192,
		Temperature: 0.7,
		Timeout:     90 * time.Second,
	}
}
