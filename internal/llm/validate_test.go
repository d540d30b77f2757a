package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func batchSchema() *Schema {
	return &Schema{
		Name:        "test-batch",
		Description: "A batch of items",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question": map[string]any{"type": "string"},
						},
					},
				},
			},
			"required": []any{"questions"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: `{"questions":[{"question":"Why?"}]}`},
		{name: "empty list", raw: `{"questions":[]}`},
		{name: "missing required", raw: `{"items":[]}`, wantErr: true},
		{name: "wrong type", raw: `{"questions":"none"}`, wantErr: true},
		{name: "not json", raw: `Here are your questions`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(batchSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var invErr *ErrInvalidResponse
			require.True(t, errors.As(err, &invErr), "expected ErrInvalidResponse, got %T", err)
			require.Equal(t, tt.raw, string(invErr.Content))
		})
	}
}

func TestValidateResponse_ValidationOverridesDefinition(t *testing.T) {
	schema := batchSchema()
	schema.Name = "test-loose-batch"
	schema.Validation = map[string]any{
		"type":       "object",
		"properties": map[string]any{"questions": map[string]any{"type": "array"}},
		"required":   []any{"questions"},
	}

	// a record that breaks Definition still passes the looser Validation
	raw := json.RawMessage(`{"questions":[{"question":"Why?"},{"question":42}]}`)
	require.Error(t, validateResponse(batchSchema(), raw))
	require.NoError(t, validateResponse(schema, raw))

	var invErr *ErrInvalidResponse
	require.ErrorAs(t, validateResponse(schema, json.RawMessage(`{"questions":{}}`)), &invErr)
}

func TestValidateResponse_NilSchema(t *testing.T) {
	require.NoError(t, validateResponse(nil, json.RawMessage(`not json`)))
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```":   `{"a":1}`,
		"```\n{\"a\":1}\n```":       `{"a":1}`,
		"  {\"a\":1}\n":             `{"a":1}`,
		"```json{\"a\":1}```":       `{"a":1}`,
		"\n```JSON\n[1,2]\n```\n\n": `[1,2]`,
	}
	for in, want := range tests {
		require.Equal(t, want, string(StripCodeFence(json.RawMessage(in))), "input %q", in)
	}
}
