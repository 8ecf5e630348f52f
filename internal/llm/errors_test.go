package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "503 in text", err: errors.New("got 503 from upstream"), want: KindTransient},
		{name: "429 in text", err: errors.New("HTTP 429 too many requests"), want: KindTransient},
		{name: "overloaded", err: errors.New("the model is overloaded"), want: KindTransient},
		{name: "unavailable", err: errors.New("rpc error: UNAVAILABLE"), want: KindTransient},
		{name: "resource exhausted", err: errors.New("RESOURCE_EXHAUSTED: quota"), want: KindTransient},
		{name: "wrapped marker", err: fmt.Errorf("failed to generate content: %w", errors.New("503")), want: KindTransient},
		{name: "markers are case sensitive", err: errors.New("service unavailable"), want: KindFatal},
		{name: "bad request", err: errors.New("400 invalid argument"), want: KindFatal},
		{name: "googleapi 429", err: &googleapi.Error{Code: http.StatusTooManyRequests, Message: "slow down"}, want: KindTransient},
		{name: "googleapi 503", err: fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusServiceUnavailable}), want: KindTransient},
		{name: "googleapi 403", err: &googleapi.Error{Code: http.StatusForbidden, Message: "key invalid"}, want: KindFatal},
		{name: "openai 429", err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limit"}, want: KindTransient},
		{name: "openai 401", err: &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}, want: KindFatal},
		{name: "status error", err: &StatusError{Code: http.StatusServiceUnavailable, Message: "down"}, want: KindTransient},
		{name: "canceled", err: context.Canceled, want: KindFatal},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: KindFatal},
		{name: "nil", err: nil, want: KindFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestErrAllModelsExhausted_Unwrap(t *testing.T) {
	last := errors.New("503")
	err := error(&ErrAllModelsExhausted{Models: []string{"a", "b"}, Attempts: 6, Last: last})

	assert.ErrorIs(t, err, last)
	assert.Contains(t, err.Error(), "all 2 models exhausted after 6 attempts")
}

func TestErrInvalidResponse(t *testing.T) {
	inner := errors.New("missing field")
	err := &ErrInvalidResponse{Schema: "quiz", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "invalid quiz response: missing field", err.Error())
	assert.Equal(t, KindFatal, Classify(err))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "transient", KindTransient.String())
	assert.Equal(t, "fatal", KindFatal.String())
}

func TestIsServiceFailure(t *testing.T) {
	assert.True(t, IsServiceFailure(&ErrAllModelsExhausted{Models: []string{"a"}}))
	assert.True(t, IsServiceFailure(fmt.Errorf("roadmap: %w", &ErrInvalidResponse{Err: errors.New("bad")})))
	assert.True(t, IsServiceFailure(fmt.Errorf("model m: %w", &googleapi.Error{Code: http.StatusBadRequest})))
	assert.True(t, IsServiceFailure(&openai.APIError{HTTPStatusCode: http.StatusUnauthorized}))
	assert.False(t, IsServiceFailure(errors.New("connection refused")))
	assert.False(t, IsServiceFailure(context.Canceled))
}
