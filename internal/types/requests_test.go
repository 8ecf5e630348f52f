package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestCreateRoadmapRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CreateRoadmapRequest{Topic: "Rust"}).Validate())
	assert.Error(t, (&CreateRoadmapRequest{Topic: ""}).Validate())
	assert.Error(t, (&CreateRoadmapRequest{Topic: strings.Repeat("a", 201)}).Validate())
}

func TestUpdateSubtopicRequest_Validate(t *testing.T) {
	assert.NoError(t, (&UpdateSubtopicRequest{}).Validate())
	assert.NoError(t, (&UpdateSubtopicRequest{TimeSpentSeconds: intPtr(0)}).Validate())
	assert.Error(t, (&UpdateSubtopicRequest{TimeSpentSeconds: intPtr(-1)}).Validate())
}

func TestQuizResultRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     QuizResultRequest
		wantErr bool
	}{
		{name: "perfect", req: QuizResultRequest{Score: 5, Total: 5}},
		{name: "zero score", req: QuizResultRequest{Score: 0, Total: 5}},
		{name: "score above total", req: QuizResultRequest{Score: 6, Total: 5}, wantErr: true},
		{name: "negative score", req: QuizResultRequest{Score: -1, Total: 5}, wantErr: true},
		{name: "zero total", req: QuizResultRequest{Score: 0, Total: 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChatRequest_Validate(t *testing.T) {
	ok := ChatRequest{
		History: []ChatMessage{{Role: "user", Text: "hi"}, {Role: "model", Text: "hello"}},
		Message: "what is a channel?",
	}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.History = []ChatMessage{{Role: "system", Text: "x"}}
	assert.Error(t, bad.Validate())

	empty := ChatRequest{}
	assert.Error(t, empty.Validate())
}
