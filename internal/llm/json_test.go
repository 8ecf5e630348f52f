package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n[1, 2]\n```",
			expected: `[1, 2]`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "preamble before object",
			input:    "Here is your roadmap:\n{\"modules\": []}",
			expected: `{"modules": []}`,
		},
		{
			name:     "trailing chatter",
			input:    "{\"a\": 1}\n\nLet me know if you need anything else!",
			expected: `{"a": 1}`,
		},
		{
			name:     "braces inside strings",
			input:    `Result: {"front": "what does } mean", "back": "a \"brace\""}`,
			expected: `{"front": "what does } mean", "back": "a \"brace\""}`,
		},
		{
			name:     "no JSON at all",
			input:    "Keep up the great work!",
			expected: "Keep up the great work!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSON_Unbalanced(t *testing.T) {
	_, found := ExtractJSON(`{"a": [1, 2}`)
	assert.False(t, found)

	_, found = ExtractJSON(`{"a": 1`)
	assert.False(t, found)
}
