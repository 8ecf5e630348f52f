// Package progress implements the points, level and badge rules of the learning tracker.
// Everything here is pure: callers own the progress snapshot and persist the result.
package progress

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNegativeAmount is returned when a point delta is below zero.
var ErrNegativeAmount = errors.New("point amount must be non-negative")

// UserProgress is a snapshot of a user's gamification state.
type UserProgress struct {
	Points int      `json:"points"`
	Level  int      `json:"level"`
	Badges []string `json:"badges"`
}

// HasBadge reports whether the badge ID has been earned.
func (p UserProgress) HasBadge(id string) bool {
	return slices.Contains(p.Badges, id)
}

// Calculator applies point deltas against a fixed badge table.
type Calculator struct {
	rules []BadgeRule
}

// NewCalculator creates a calculator for the given badge table.
// The table is copied; badge IDs must be unique.
func NewCalculator(rules []BadgeRule) (*Calculator, error) {
	if err := validateRules(rules); err != nil {
		return nil, err
	}
	return &Calculator{rules: slices.Clone(rules)}, nil
}

// DefaultCalculator returns a calculator over DefaultBadgeRules.
func DefaultCalculator() *Calculator {
	c, err := NewCalculator(DefaultBadgeRules())
	if err != nil {
		panic(fmt.Sprintf("default badge table is invalid: %v", err))
	}
	return c
}

// Rules returns a copy of the badge table in declaration order.
func (c *Calculator) Rules() []BadgeRule {
	return slices.Clone(c.rules)
}

// Rule looks up a badge rule by ID.
func (c *Calculator) Rule(id string) (BadgeRule, bool) {
	for _, r := range c.rules {
		if r.ID == id {
			return r, true
		}
	}
	return BadgeRule{}, false
}

// AddPoints returns the successor of current after adding amount points,
// together with the badges that were earned by this call in table order.
//
// An amount of zero is valid and reconciles badges whose threshold the
// current total already meets. current is never modified.
func (c *Calculator) AddPoints(current UserProgress, amount int) (UserProgress, []BadgeRule, error) {
	if amount < 0 {
		return current, nil, fmt.Errorf("%w: got %d", ErrNegativeAmount, amount)
	}

	points := current.Points + amount
	badges := slices.Clone(current.Badges)
	var earned []BadgeRule

	for _, rule := range c.rules {
		if points < rule.Threshold || slices.Contains(badges, rule.ID) {
			continue
		}
		badges = append(badges, rule.ID)
		earned = append(earned, rule)
	}

	return UserProgress{
		Points: points,
		Level:  Level(points),
		Badges: badges,
	}, earned, nil
}

// LeveledUp reports whether after sits on a higher level than before.
func LeveledUp(before, after UserProgress) bool {
	return Level(after.Points) > Level(before.Points)
}
