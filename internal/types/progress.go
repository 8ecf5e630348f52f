package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/skillforge/internal/progress"
)

// Badge is an earned achievement.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// Profile is the /me response.
type Profile struct {
	User     *User                `json:"user"`
	Progress progress.LevelStatus `json:"progress"`
	Roadmaps int                  `json:"roadmaps"`
}

// AwardResult reports the effect of a point award.
type AwardResult struct {
	Awarded   int     `json:"awarded"`
	Points    int     `json:"points"`
	Level     int     `json:"level"`
	LeveledUp bool    `json:"leveled_up"`
	NewBadges []Badge `json:"new_badges"`
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank   int       `json:"rank"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
	Level  int       `json:"level"`
	Badges int       `json:"badges"`
}

// ChangeEvent is pushed to subscribers when stored state changes.
type ChangeEvent struct {
	Topic     string    `json:"topic"`
	Kind      string    `json:"kind"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	RoadmapID string    `json:"roadmap_id,omitempty"`
}

// RoadmapUpdate is the result of a roadmap mutation that may award points.
type RoadmapUpdate struct {
	Roadmap *Roadmap     `json:"roadmap"`
	Award   *AwardResult `json:"award,omitempty"`
}

// QuizResult is the outcome of submitting a quiz score.
type QuizResult struct {
	Passed       bool         `json:"passed"`
	PassingScore int          `json:"passing_score"`
	Roadmap      *Roadmap     `json:"roadmap,omitempty"`
	Award        *AwardResult `json:"award,omitempty"`
}
