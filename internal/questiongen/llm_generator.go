package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/llm"
)

// LLMGenerator implements app.Generator on top of an llm.Provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

func NewLLMGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

type batchOutput struct {
	Questions []json.RawMessage `json:"questions"`
}

// GenerateBatch asks the model for req.Count questions. Records that cannot be
// decoded are skipped; everything else is returned unvalidated because the
// question store owns validation and dedup.
func (g *LLMGenerator) GenerateBatch(ctx context.Context, req app.BatchRequest) ([]domain.Question, error) {
	if req.Count <= 0 {
		return nil, &domain.PreconditionError{Op: "generate batch", Reason: fmt.Sprintf("count %d must be positive", req.Count)}
	}
	ctx = llm.WithPurpose(ctx, "question-batch")
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(req)},
		},
		Schema:      BatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s/%s batch: %w", req.Subject, req.Level, err)
	}

	return DecodeBatch(resp.Content)
}

// DecodeBatch parses a {"questions": [...]} document, tolerating Markdown
// fences around it and skipping records that do not decode.
func DecodeBatch(raw json.RawMessage) ([]domain.Question, error) {
	var out batchOutput
	if err := json.Unmarshal(llm.StripCodeFence(raw), &out); err != nil {
		return nil, fmt.Errorf("parse batch: %w", err)
	}

	questions := make([]domain.Question, 0, len(out.Questions))
	for i, item := range out.Questions {
		var q domain.Question
		if err := json.Unmarshal(item, &q); err != nil {
			log.Printf("questiongen: skipping record %d: %v", i, err)
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}
