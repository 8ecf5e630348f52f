// Package tracker is the learning tracker's application service. It owns
// roadmap documents, awards points for learning activity and routes AI
// requests through the tutor.
package tracker

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/skillforge/internal/db"
	"github.com/jonathan/skillforge/internal/progress"
	"github.com/jonathan/skillforge/internal/types"
	"github.com/oklog/ulid/v2"
)

// Store persists users and roadmap documents. *db.DB implements it.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	MutateProgress(ctx context.Context, id uuid.UUID, fn func(u *db.User) error) (*db.User, error)
	Leaderboard(ctx context.Context, limit int) ([]types.LeaderboardEntry, error)

	SaveRoadmap(ctx context.Context, userID uuid.UUID, r *types.Roadmap) error
	GetRoadmap(ctx context.Context, userID uuid.UUID, id string) (*types.Roadmap, error)
	ListRoadmaps(ctx context.Context, userID uuid.UUID) ([]types.Roadmap, error)
	CountRoadmaps(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteRoadmap(ctx context.Context, userID uuid.UUID, id string) (bool, error)
	MutateRoadmap(ctx context.Context, userID uuid.UUID, id string, fn func(r *types.Roadmap) error) (*types.Roadmap, error)
}

var _ Store = (*db.DB)(nil)

// Tutor generates study material. *tutor.Service implements it.
type Tutor interface {
	Roadmap(ctx context.Context, topic string) ([]types.Module, error)
	Resources(ctx context.Context, topic, subtopic string) []types.Resource
	Quiz(ctx context.Context, moduleTitle string, subtopics []string) ([]types.QuizQuestion, error)
	Feedback(ctx context.Context, topic string, performance []types.ModulePerformance) (string, error)
	Chat(ctx context.Context, topic string, history []types.ChatMessage, message string) (string, error)
	CommunityThreads(ctx context.Context, topic string) ([]types.ForumPost, error)
	Analysis(ctx context.Context, topic string, activity []types.SubtopicActivity) (*types.AnalyticsReport, error)
	Flashcards(ctx context.Context, topic, subtopic string) ([]types.Flashcard, error)
}

// Leaderboard size limits
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// Tracker coordinates the store, the tutor and the progression calculator.
type Tracker struct {
	store  Store
	tutor  Tutor
	calc   *progress.Calculator
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a tracker. A nil calculator uses the default badge table.
func New(store Store, tutor Tutor, calc *progress.Calculator, logger *slog.Logger) *Tracker {
	if calc == nil {
		calc = progress.DefaultCalculator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:  store,
		tutor:  tutor,
		calc:   calc,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return ulid.Make().String() },
	}
}

// Calculator returns the progression calculator in use.
func (t *Tracker) Calculator() *progress.Calculator {
	return t.calc
}

// CreateRoadmap generates a roadmap for topic and saves it for the user.
func (t *Tracker) CreateRoadmap(ctx context.Context, userID uuid.UUID, topic string) (*types.Roadmap, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, invalid("topic", "must not be empty")
	}
	if _, err := t.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	modules, err := t.tutor.Roadmap(ctx, topic)
	if err != nil {
		return nil, err
	}

	r := &types.Roadmap{
		ID:        t.newID(),
		Topic:     topic,
		CreatedAt: t.now(),
		Modules:   modules,
	}
	if err := t.store.SaveRoadmap(ctx, userID, r); err != nil {
		return nil, err
	}
	t.logger.Info("roadmap created", "user_id", userID, "roadmap_id", r.ID, "modules", len(modules))
	return r, nil
}

// ListRoadmaps returns the summaries of a user's roadmaps, newest first.
func (t *Tracker) ListRoadmaps(ctx context.Context, userID uuid.UUID) ([]types.RoadmapSummary, error) {
	roadmaps, err := t.store.ListRoadmaps(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]types.RoadmapSummary, 0, len(roadmaps))
	for i := range roadmaps {
		out = append(out, roadmaps[i].Summary())
	}
	return out, nil
}

// GetRoadmap returns one of the user's roadmaps.
func (t *Tracker) GetRoadmap(ctx context.Context, userID uuid.UUID, roadmapID string) (*types.Roadmap, error) {
	r, err := t.store.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound("roadmap", roadmapID)
	}
	return r, nil
}

// DeleteRoadmap removes one of the user's roadmaps.
func (t *Tracker) DeleteRoadmap(ctx context.Context, userID uuid.UUID, roadmapID string) error {
	deleted, err := t.store.DeleteRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("roadmap", roadmapID)
	}
	return nil
}

func (t *Tracker) requireUser(ctx context.Context, userID uuid.UUID) (*db.User, error) {
	u, err := t.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("user", userID.String())
	}
	return u, nil
}

// mutateRoadmap wraps Store.MutateRoadmap and maps a missing roadmap to ErrNotFound.
func (t *Tracker) mutateRoadmap(ctx context.Context, userID uuid.UUID, roadmapID string, fn func(r *types.Roadmap) error) (*types.Roadmap, error) {
	r, err := t.store.MutateRoadmap(ctx, userID, roadmapID, fn)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound("roadmap", roadmapID)
	}
	return r, nil
}
