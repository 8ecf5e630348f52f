package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/skillforge/internal/schemas"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedRequest mirrors the wire fields the tests inspect.
type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type       string `json:"type"`
		JSONSchema *struct {
			Name   string          `json:"name"`
			Schema json.RawMessage `json:"schema"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

func newOpenAITestServer(t *testing.T, handler func(w http.ResponseWriter, req capturedRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req capturedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}

func TestOpenAIBackend_Generate(t *testing.T) {
	var got capturedRequest
	server := newOpenAITestServer(t, func(w http.ResponseWriter, req capturedRequest) {
		got = req
		writeCompletion(w, `{"questions":[]}`)
	})

	backend, err := NewOpenAIBackend(&Config{APIKey: "test", BaseURL: server.URL + "/v1", Temperature: 0.2})
	require.NoError(t, err)

	text, err := backend.Generate(context.Background(), "gpt-4o-mini", Request{
		System:  "You are a tutor.",
		History: []Message{{Role: RoleUser, Text: "hi"}, {Role: RoleModel, Text: "hello"}},
		Prompt:  "quiz me",
		Schema:  schemas.MustGet(schemas.Quiz),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"questions":[]}`, text)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, got.Messages[2].Role)
	assert.Equal(t, "quiz me", got.Messages[3].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, string(openai.ChatCompletionResponseFormatTypeJSONSchema), got.ResponseFormat.Type)
	require.NotNil(t, got.ResponseFormat.JSONSchema)
	assert.Equal(t, schemas.Quiz, got.ResponseFormat.JSONSchema.Name)
	assert.Contains(t, string(got.ResponseFormat.JSONSchema.Schema), `"questions"`)
}

func TestOpenAIBackend_RateLimitIsTransient(t *testing.T) {
	server := newOpenAITestServer(t, func(w http.ResponseWriter, _ capturedRequest) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`))
	})

	backend, err := NewOpenAIBackend(&Config{APIKey: "test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = backend.Generate(context.Background(), "gpt-4o-mini", Request{Prompt: "hi"})
	require.Error(t, err)

	var apiErr *openai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.HTTPStatusCode)
	assert.Equal(t, KindTransient, Classify(err))
}

func TestOpenAIBackend_ThroughInvokerFallsBack(t *testing.T) {
	server := newOpenAITestServer(t, func(w http.ResponseWriter, req capturedRequest) {
		if req.Model == "primary" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		writeCompletion(w, "answer from "+req.Model)
	})

	cfg := &Config{
		Provider: ProviderOpenAI,
		APIKey:   "test",
		BaseURL:  server.URL + "/v1",
		Models:   []string{"primary", "secondary"},
		Retry:    RetryPolicy{MaxAttemptsPerModel: 2},
	}
	backend, err := NewOpenAIBackend(cfg)
	require.NoError(t, err)
	inv, err := NewInvoker(backend, nil, cfg)
	require.NoError(t, err)

	text, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "answer from secondary", text)
	assert.Equal(t, "secondary", inv.Selector().CurrentModel())
}

func TestNewOpenAIBackend_RequiresKey(t *testing.T) {
	_, err := NewOpenAIBackend(&Config{})
	assert.Error(t, err)
}
