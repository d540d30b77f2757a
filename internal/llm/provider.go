package llm

import (
	"context"
	"encoding/json"
)

// Provider turns one prompt into one JSON document. The quiz uses it to ask
// for question batches; retries and logging are layered on as decorators.
type Provider interface {
	// Generate returns the model's JSON output. When req.Schema is set the
	// output has already been checked against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

// Request is a single generation call.
type Request struct {
	System string

	// Messages holds the user turn. Question batches send exactly one.
	Messages []Message

	// Schema asks the provider for structured JSON output. Nil means the
	// model's text is returned as-is.
	Schema *Schema

	MaxTokens int

	// Temperature is 0..1; zero lets the provider use its default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema. Name doubles as the cache key for compiled
// validators, so two different shapes must not share a name.
type Schema struct {
	Name        string
	Description string

	// Definition is the JSON Schema sent to the provider to shape output.
	Definition map[string]any

	// Validation, when set, is what responses are checked against instead of
	// Definition. Batch schemas use a looser shape here so a single bad
	// record does not void the whole response.
	Validation map[string]any
}

// validationDefinition returns the schema responses must satisfy.
func (s *Schema) validationDefinition() map[string]any {
	if s.Validation != nil {
		return s.Validation
	}
	return s.Definition
}

// Response is the provider's output with fences already stripped.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
