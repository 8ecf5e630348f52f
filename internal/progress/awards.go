package progress

import "fmt"

// Point rewards for learning activity
const (
	SubtopicStartedPoints   = 10
	SubtopicCompletedPoints = 50
	QuizBasePoints          = 100
	QuizMaxBonusPoints      = 50
)

// QuizPoints returns the reward for passing a quiz: the base reward plus a
// bonus proportional to the score, rounded down.
func QuizPoints(score, total int) (int, error) {
	if total <= 0 {
		return 0, fmt.Errorf("quiz total must be positive, got %d", total)
	}
	if score < 0 || score > total {
		return 0, fmt.Errorf("quiz score %d out of range [0, %d]", score, total)
	}
	return QuizBasePoints + score*QuizMaxBonusPoints/total, nil
}

// PassingScore returns the lowest score that passes a quiz of total questions (70%, rounded up).
func PassingScore(total int) int {
	if total <= 0 {
		return 0
	}
	return (total*7 + 9) / 10
}
