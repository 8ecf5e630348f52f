package trackertest

import (
	"context"
	"sync"

	"github.com/jonathan/skillforge/internal/types"
)

// Tutor returns canned material and counts calls per method. When Err is
// set every generating method fails with it; Resources returns an empty list.
type Tutor struct {
	Modules      []types.Module
	Links        []types.Resource
	Questions    []types.QuizQuestion
	FeedbackText string
	Err          error

	mu              sync.Mutex
	calls           map[string]int
	lastTopic       string
	lastPerformance []types.ModulePerformance
	lastActivity    []types.SubtopicActivity
}

// NewTutor returns a tutor with a two-module roadmap and one of everything else.
func NewTutor() *Tutor {
	return &Tutor{
		Modules: []types.Module{
			{ID: "m1", Title: "Basics", Description: "Start here", Subtopics: []types.Subtopic{{ID: "s1", Title: "Syntax"}, {ID: "s2", Title: "Types"}}},
			{ID: "m2", Title: "Concurrency", Description: "Goroutines", Subtopics: []types.Subtopic{{ID: "s3", Title: "Channels"}}},
		},
		Links: []types.Resource{{Title: "Docs", URL: "https://go.dev", Type: types.ResourceDoc}},
		Questions: []types.QuizQuestion{
			{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a", Explanation: "e"},
		},
		FeedbackText: "Nice work.",
	}
}

func (f *Tutor) record(name, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
	f.lastTopic = topic
	return f.Err
}

// Calls returns how often the named method ran ("roadmap", "resources", ...).
func (f *Tutor) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// LastTopic returns the topic (or module title, for quizzes) of the last call.
func (f *Tutor) LastTopic() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTopic
}

// LastPerformance returns the input of the last Feedback call.
func (f *Tutor) LastPerformance() []types.ModulePerformance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPerformance
}

// LastActivity returns the input of the last Analysis call.
func (f *Tutor) LastActivity() []types.SubtopicActivity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastActivity
}

func (f *Tutor) Roadmap(_ context.Context, topic string) ([]types.Module, error) {
	if err := f.record("roadmap", topic); err != nil {
		return nil, err
	}
	return f.Modules, nil
}

func (f *Tutor) Resources(_ context.Context, topic, _ string) []types.Resource {
	if err := f.record("resources", topic); err != nil {
		return []types.Resource{}
	}
	return f.Links
}

func (f *Tutor) Quiz(_ context.Context, moduleTitle string, _ []string) ([]types.QuizQuestion, error) {
	if err := f.record("quiz", moduleTitle); err != nil {
		return nil, err
	}
	return f.Questions, nil
}

func (f *Tutor) Feedback(_ context.Context, topic string, performance []types.ModulePerformance) (string, error) {
	if err := f.record("feedback", topic); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.lastPerformance = performance
	f.mu.Unlock()
	return f.FeedbackText, nil
}

func (f *Tutor) Chat(_ context.Context, topic string, _ []types.ChatMessage, message string) (string, error) {
	if err := f.record("chat", topic); err != nil {
		return "", err
	}
	return "re: " + message, nil
}

func (f *Tutor) CommunityThreads(_ context.Context, topic string) ([]types.ForumPost, error) {
	if err := f.record("community", topic); err != nil {
		return nil, err
	}
	return []types.ForumPost{{ID: "p1", Author: "Ana", Content: "hello", Replies: []types.ForumPost{}, IsAIGenerated: true}}, nil
}

func (f *Tutor) Analysis(_ context.Context, topic string, activity []types.SubtopicActivity) (*types.AnalyticsReport, error) {
	if err := f.record("analysis", topic); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lastActivity = activity
	f.mu.Unlock()
	return &types.AnalyticsReport{Recommendations: "keep going"}, nil
}

func (f *Tutor) Flashcards(_ context.Context, topic, _ string) ([]types.Flashcard, error) {
	if err := f.record("flashcards", topic); err != nil {
		return nil, err
	}
	return []types.Flashcard{{Front: "f", Back: "b"}}, nil
}
