package tracker

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonathan/skillforge/internal/db"
	"github.com/jonathan/skillforge/internal/progress"
	"github.com/jonathan/skillforge/internal/types"
)

// AwardPoints adds amount points to the user. The calculator runs inside the
// store's progress transaction, so concurrent awards never lose updates.
func (t *Tracker) AwardPoints(ctx context.Context, userID uuid.UUID, amount int) (*types.AwardResult, error) {
	result := &types.AwardResult{NewBadges: []types.Badge{}}

	u, err := t.store.MutateProgress(ctx, userID, func(u *db.User) error {
		before := progress.UserProgress{Points: u.Points, Level: u.Level, Badges: badgeIDs(u.Badges)}
		after, earned, err := t.calc.AddPoints(before, amount)
		if err != nil {
			return err
		}

		now := t.now()
		u.Points = after.Points
		u.Level = after.Level
		for _, rule := range earned {
			b := types.Badge{
				ID:          rule.ID,
				Name:        rule.Name,
				Icon:        rule.Icon,
				Description: rule.Description,
				UnlockedAt:  now,
			}
			u.Badges = append(u.Badges, b)
			result.NewBadges = append(result.NewBadges, b)
		}

		result.Awarded = amount
		result.Points = after.Points
		result.Level = after.Level
		result.LeveledUp = progress.LeveledUp(before, after)
		return nil
	})
	if err != nil {
		if errors.Is(err, progress.ErrNegativeAmount) {
			return nil, &ErrValidation{Field: "amount", Message: err.Error(), Err: err}
		}
		return nil, err
	}
	if u == nil {
		return nil, notFound("user", userID.String())
	}

	if len(result.NewBadges) > 0 || result.LeveledUp {
		t.logger.Info("progress milestone",
			"user_id", userID,
			"points", result.Points,
			"level", result.Level,
			"new_badges", len(result.NewBadges))
	}
	return result, nil
}

func badgeIDs(badges []types.Badge) []string {
	ids := make([]string, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.ID)
	}
	return ids
}

// Profile returns the user with level progress and roadmap count.
func (t *Tracker) Profile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	u, err := t.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	n, err := t.store.CountRoadmaps(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &types.Profile{
		User:     u.Public(),
		Progress: progress.StatusFor(u.Points),
		Roadmaps: n,
	}, nil
}

// Leaderboard returns the top users. limit defaults to DefaultLeaderboardLimit
// and is capped at MaxLeaderboardLimit.
func (t *Tracker) Leaderboard(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	return t.store.Leaderboard(ctx, limit)
}
