package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/skillforge/internal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGeminiSchema_Resources(t *testing.T) {
	s := buildGeminiSchema(schemas.MustGet(schemas.Resources).Definition)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"resources"}, s.Required)

	items := s.Properties["resources"].Items
	require.NotNil(t, items)
	assert.Equal(t, genai.TypeObject, items.Type)
	assert.ElementsMatch(t, []string{"title", "searchQuery", "type"}, items.Required)

	kind := items.Properties["type"]
	assert.Equal(t, genai.TypeString, kind.Type)
	assert.Equal(t, []string{"video", "article", "doc"}, kind.Enum)
}

func TestBuildGeminiSchema_Types(t *testing.T) {
	s := buildGeminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"n":    map[string]any{"type": "number"},
			"i":    map[string]any{"type": "integer"},
			"b":    map[string]any{"type": "boolean"},
			"odd":  map[string]any{"type": "null"},
			"list": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	})

	assert.Equal(t, genai.TypeNumber, s.Properties["n"].Type)
	assert.Equal(t, genai.TypeInteger, s.Properties["i"].Type)
	assert.Equal(t, genai.TypeBoolean, s.Properties["b"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["odd"].Type)
	assert.Equal(t, genai.TypeArray, s.Properties["list"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["list"].Items.Type)
}

func TestBuildGeminiHistory(t *testing.T) {
	contents := buildGeminiHistory([]Message{
		{Role: RoleUser, Text: "what is a slice?"},
		{Role: RoleModel, Text: "a view over an array"},
	})

	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, genai.Text("a view over an array"), contents[1].Parts[0])
}

func TestExtractTextFromResponse(t *testing.T) {
	_, err := extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	text, err := extractTextFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("hello "), genai.Text("world")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestNewGeminiBackend_RequiresKey(t *testing.T) {
	_, err := NewGeminiBackend(context.Background(), &Config{})
	assert.Error(t, err)
}
