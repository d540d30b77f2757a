package questiongen

import "adaptive-quiz-service/internal/llm"

// BatchSchema describes the wrapper object returned by the model. Definition
// guides the provider; Validation only requires the questions array so each
// record is judged on its own by question validation.
var BatchSchema = &llm.Schema{
	Name:        "question-batch",
	Description: "A batch of multiple-choice quiz questions ordered from easiest to hardest",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The actual question text",
						},
						"difficulty": map[string]any{
							"type":        "integer",
							"description": "1-10 scale, where 1 is easiest and 10 is hardest",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly four answer options",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "Exact text of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Detailed explanation of why this is correct",
						},
						"concept": map[string]any{
							"type":        "string",
							"description": "The main concept being tested",
						},
					},
				},
			},
		},
		"required": []any{"questions"},
	},
	Validation: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{"type": "array"},
		},
		"required": []any{"questions"},
	},
}
