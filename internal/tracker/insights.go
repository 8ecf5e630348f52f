package tracker

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/skillforge/internal/types"
)

// NoQuizFeedback is stored when no module quiz has been completed yet.
const NoQuizFeedback = "Complete at least one module quiz to get personalized AI feedback!"

// defaultQuizTotal stands in for a missing question count on old documents.
const defaultQuizTotal = 5

// Feedback reviews performance on modules with a completed quiz and stores
// the text on the roadmap.
func (t *Tracker) Feedback(ctx context.Context, userID uuid.UUID, roadmapID string) (string, error) {
	r, err := t.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return "", err
	}

	performance := modulePerformance(r)
	feedback := NoQuizFeedback
	if len(performance) > 0 {
		if feedback, err = t.tutor.Feedback(ctx, r.Topic, performance); err != nil {
			return "", err
		}
	}

	_, err = t.mutateRoadmap(ctx, userID, roadmapID, func(r *types.Roadmap) error {
		r.Feedback = feedback
		return nil
	})
	if err != nil {
		return "", err
	}
	return feedback, nil
}

func modulePerformance(r *types.Roadmap) []types.ModulePerformance {
	var out []types.ModulePerformance
	for _, m := range r.Modules {
		if !m.QuizCompleted {
			continue
		}
		p := types.ModulePerformance{Module: m.Title, QuizTotal: defaultQuizTotal}
		if m.QuizScore != nil {
			p.QuizScore = *m.QuizScore
		}
		if m.QuizTotalQuestions != nil {
			p.QuizTotal = *m.QuizTotalQuestions
		}
		for _, s := range m.Subtopics {
			p.Subtopics = append(p.Subtopics, types.SubtopicTime{Title: s.Title, Time: s.TimeSpentSeconds})
		}
		out = append(out, p)
	}
	return out
}

// Analysis produces a deep study analysis from time spent and completion per subtopic.
func (t *Tracker) Analysis(ctx context.Context, userID uuid.UUID, roadmapID string) (*types.AnalyticsReport, error) {
	r, err := t.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	var activity []types.SubtopicActivity
	for _, m := range r.Modules {
		for _, s := range m.Subtopics {
			activity = append(activity, types.SubtopicActivity{Title: s.Title, Time: s.TimeSpentSeconds, Completed: s.IsCompleted})
		}
	}
	return t.tutor.Analysis(ctx, r.Topic, activity)
}

// CommunityThreads generates discussion threads for the roadmap's topic.
func (t *Tracker) CommunityThreads(ctx context.Context, userID uuid.UUID, roadmapID string) ([]types.ForumPost, error) {
	r, err := t.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	return t.tutor.CommunityThreads(ctx, r.Topic)
}

// Chat answers a learner question in the context of the roadmap's topic.
func (t *Tracker) Chat(ctx context.Context, userID uuid.UUID, roadmapID string, history []types.ChatMessage, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", invalid("message", "must not be empty")
	}
	r, err := t.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return "", err
	}
	return t.tutor.Chat(ctx, r.Topic, history, message)
}
