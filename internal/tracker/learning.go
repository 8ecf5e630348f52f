package tracker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/skillforge/internal/progress"
	"github.com/jonathan/skillforge/internal/types"
)

// SubtopicUpdate carries the subtopic fields a learner can change. Nil fields are left alone.
type SubtopicUpdate struct {
	Completed        *bool
	TimeSpentSeconds *int
}

// StartSubtopic marks a subtopic started. The first start awards SubtopicStartedPoints.
func (t *Tracker) StartSubtopic(ctx context.Context, userID uuid.UUID, roadmapID, subtopicID string) (*types.RoadmapUpdate, error) {
	started := false
	r, err := t.mutateRoadmap(ctx, userID, roadmapID, func(r *types.Roadmap) error {
		_, sub := r.Subtopic(subtopicID)
		if sub == nil {
			return notFound("subtopic", subtopicID)
		}
		if sub.IsStarted {
			return nil
		}
		sub.IsStarted = true
		now := t.now()
		sub.LastSessionDate = &now
		started = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	update := &types.RoadmapUpdate{Roadmap: r}
	if started {
		if update.Award, err = t.AwardPoints(ctx, userID, progress.SubtopicStartedPoints); err != nil {
			return nil, fmt.Errorf("failed to award start points: %w", err)
		}
	}
	return update, nil
}

// UpdateSubtopic applies a completion toggle and/or the absolute time spent.
// Completing a subtopic for the first time awards SubtopicCompletedPoints;
// toggling it off and on again does not pay twice.
func (t *Tracker) UpdateSubtopic(ctx context.Context, userID uuid.UUID, roadmapID, subtopicID string, upd SubtopicUpdate) (*types.RoadmapUpdate, error) {
	if upd.TimeSpentSeconds != nil && *upd.TimeSpentSeconds < 0 {
		return nil, invalid("timeSpentSeconds", "must be non-negative, got %d", *upd.TimeSpentSeconds)
	}

	reward := false
	r, err := t.mutateRoadmap(ctx, userID, roadmapID, func(r *types.Roadmap) error {
		_, sub := r.Subtopic(subtopicID)
		if sub == nil {
			return notFound("subtopic", subtopicID)
		}

		if upd.Completed != nil {
			if *upd.Completed && !sub.IsCompleted && !sub.CompletionRewarded {
				sub.CompletionRewarded = true
				reward = true
			}
			sub.IsCompleted = *upd.Completed
			if sub.IsCompleted {
				sub.IsStarted = true
			}
		}
		if upd.TimeSpentSeconds != nil {
			sub.TimeSpentSeconds = *upd.TimeSpentSeconds
		}
		now := t.now()
		sub.LastSessionDate = &now

		if r.RefreshCompletion() {
			t.logger.Info("roadmap completed", "user_id", userID, "roadmap_id", r.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	update := &types.RoadmapUpdate{Roadmap: r}
	if reward {
		if update.Award, err = t.AwardPoints(ctx, userID, progress.SubtopicCompletedPoints); err != nil {
			return nil, fmt.Errorf("failed to award completion points: %w", err)
		}
	}
	return update, nil
}

// LoadResources returns a subtopic's study links, generating and caching them on first use.
func (t *Tracker) LoadResources(ctx context.Context, userID uuid.UUID, roadmapID, subtopicID string) ([]types.Resource, error) {
	r, err := t.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	_, sub := r.Subtopic(subtopicID)
	if sub == nil {
		return nil, notFound("subtopic", subtopicID)
	}
	if len(sub.Resources) > 0 {
		return sub.Resources, nil
	}

	resources := t.tutor.Resources(ctx, r.Topic, sub.Title)
	if len(resources) == 0 {
		return resources, nil
	}

	var stored []types.Resource
	_, err = t.mutateRoadmap(ctx, userID, roadmapID, func(r *types.Roadmap) error {
		_, sub := r.Subtopic(subtopicID)
		if sub == nil {
			return notFound("subtopic", subtopicID)
		}
		// a concurrent request may have cached first
		if len(sub.Resources) == 0 {
			sub.Resources = resources
		}
		stored = sub.Resources
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Flashcards returns a subtopic's flashcards, generating and caching them on first use.
func (t *Tracker) Flashcards(ctx context.Context, userID uuid.UUID, roadmapID, subtopicID string) ([]types.Flashcard, error) {
	r, err := t.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	_, sub := r.Subtopic(subtopicID)
	if sub == nil {
		return nil, notFound("subtopic", subtopicID)
	}
	if len(sub.Flashcards) > 0 {
		return sub.Flashcards, nil
	}

	cards, err := t.tutor.Flashcards(ctx, r.Topic, sub.Title)
	if err != nil {
		return nil, err
	}

	var stored []types.Flashcard
	_, err = t.mutateRoadmap(ctx, userID, roadmapID, func(r *types.Roadmap) error {
		_, sub := r.Subtopic(subtopicID)
		if sub == nil {
			return notFound("subtopic", subtopicID)
		}
		if len(sub.Flashcards) == 0 {
			sub.Flashcards = cards
		}
		stored = sub.Flashcards
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// GenerateQuiz creates a fresh quiz covering a module's subtopics.
func (t *Tracker) GenerateQuiz(ctx context.Context, userID uuid.UUID, roadmapID, moduleID string) ([]types.QuizQuestion, error) {
	r, err := t.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	m := r.Module(moduleID)
	if m == nil {
		return nil, notFound("module", moduleID)
	}
	return t.tutor.Quiz(ctx, m.Title, m.SubtopicTitles())
}

// SubmitQuiz records a quiz score. A passing score completes the module
// quiz and awards progress.QuizPoints; a failing one changes nothing.
func (t *Tracker) SubmitQuiz(ctx context.Context, userID uuid.UUID, roadmapID, moduleID string, score, total int) (*types.QuizResult, error) {
	points, err := progress.QuizPoints(score, total)
	if err != nil {
		return nil, invalid("score", "%v", err)
	}

	result := &types.QuizResult{PassingScore: progress.PassingScore(total)}
	if score < result.PassingScore {
		r, err := t.GetRoadmap(ctx, userID, roadmapID)
		if err != nil {
			return nil, err
		}
		if r.Module(moduleID) == nil {
			return nil, notFound("module", moduleID)
		}
		return result, nil
	}

	r, err := t.mutateRoadmap(ctx, userID, roadmapID, func(r *types.Roadmap) error {
		m := r.Module(moduleID)
		if m == nil {
			return notFound("module", moduleID)
		}
		if m.QuizCompleted {
			return ErrQuizCompleted
		}
		m.QuizCompleted = true
		m.QuizScore = &score
		m.QuizTotalQuestions = &total
		r.RefreshCompletion()
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Passed = true
	result.Roadmap = r
	if result.Award, err = t.AwardPoints(ctx, userID, points); err != nil {
		return nil, fmt.Errorf("failed to award quiz points: %w", err)
	}
	return result, nil
}
