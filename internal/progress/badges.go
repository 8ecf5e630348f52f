package progress

import "fmt"

// BadgeRule describes a one-time achievement unlocked at a point threshold.
type BadgeRule struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Threshold   int    `json:"threshold"`
}

// Badge IDs of the default table
const (
	BadgeNovice     = "novice"
	BadgeApprentice = "apprentice"
	BadgeExpert     = "expert"
	BadgeWizard     = "wizard"
)

// DefaultBadgeRules returns the built-in badge table in declaration order.
func DefaultBadgeRules() []BadgeRule {
	return []BadgeRule{
		{ID: BadgeNovice, Name: "Novice Explorer", Icon: "🧭", Description: "Earned 100 XP", Threshold: 100},
		{ID: BadgeApprentice, Name: "Apprentice Builder", Icon: "🔨", Description: "Earned 500 XP", Threshold: 500},
		{ID: BadgeExpert, Name: "Knowledge Master", Icon: "🧠", Description: "Earned 1000 XP", Threshold: 1000},
		{ID: BadgeWizard, Name: "Skill Wizard", Icon: "🧙‍♂️", Description: "Earned 5000 XP", Threshold: 5000},
	}
}

// ErrDuplicateBadge is returned when a badge table declares the same ID twice.
type ErrDuplicateBadge struct {
	ID string
}

func (e *ErrDuplicateBadge) Error() string {
	return fmt.Sprintf("duplicate badge id: %s", e.ID)
}

// validateRules checks IDs are unique and non-empty and thresholds are non-negative.
func validateRules(rules []BadgeRule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if r.ID == "" {
			return fmt.Errorf("badge rule %q has an empty id", r.Name)
		}
		if r.Threshold < 0 {
			return fmt.Errorf("badge rule %s has negative threshold %d", r.ID, r.Threshold)
		}
		if _, dup := seen[r.ID]; dup {
			return &ErrDuplicateBadge{ID: r.ID}
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
