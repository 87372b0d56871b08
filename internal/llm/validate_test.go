package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func problemSchema() *Schema {
	return &Schema{
		Name:        "validate-word-problem",
		Description: "A word problem with its numeric answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"problem_text": map[string]any{"type": "string", "minLength": 1},
				"final_answer": map[string]any{"type": "number"},
				"difficulty":   map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			},
			"required": []any{"problem_text", "final_answer"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"problem_text":"3 pens cost $6. One pen?","final_answer":2}`, false},
		{"valid with optional", `{"problem_text":"x","final_answer":0.25,"difficulty":"hard"}`, false},
		{"missing answer", `{"problem_text":"x"}`, true},
		{"answer as string", `{"problem_text":"x","final_answer":"2"}`, true},
		{"empty text", `{"problem_text":"","final_answer":2}`, true},
		{"bad enum", `{"problem_text":"x","final_answer":2,"difficulty":"extreme"}`, true},
		{"malformed", `{"problem_text":`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(problemSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			assert.ErrorAs(t, err, &inv)
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage("anything at all")))
}
