package progress

import "math"

// pointsPerLevelUnit is the divisor in level = floor(1 + sqrt(points / 100)).
const pointsPerLevelUnit = 100

// Level returns the level reached with the given point total.
// Negative totals are treated as zero.
//
// floor(sqrt(x)) == floor(sqrt(floor(x))) for x >= 0, so integer division
// followed by an integer square root gives the exact result without float
// rounding at perfect squares.
func Level(points int) int {
	if points < 0 {
		points = 0
	}
	return 1 + isqrt(points/pointsPerLevelUnit)
}

// LevelFloor returns the smallest point total that reaches the given level.
func LevelFloor(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * (level - 1) * pointsPerLevelUnit
}

// NextLevelAt returns the point total needed to leave the given level.
func NextLevelAt(level int) int {
	if level < 1 {
		level = 1
	}
	return level * level * pointsPerLevelUnit
}

// LevelStatus describes where a point total sits inside its level.
type LevelStatus struct {
	Level         int `json:"level"`
	Points        int `json:"points"`
	LevelFloor    int `json:"level_floor"`
	NextLevelAt   int `json:"next_level_at"`
	IntoLevel     int `json:"into_level"`
	LevelSpan     int `json:"level_span"`
	PercentToNext int `json:"percent_to_next"`
}

// StatusFor computes the level bracket for a point total.
func StatusFor(points int) LevelStatus {
	if points < 0 {
		points = 0
	}
	level := Level(points)
	floor := LevelFloor(level)
	next := NextLevelAt(level)
	span := next - floor
	into := points - floor

	return LevelStatus{
		Level:         level,
		Points:        points,
		LevelFloor:    floor,
		NextLevelAt:   next,
		IntoLevel:     into,
		LevelSpan:     span,
		PercentToNext: into * 100 / span,
	}
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int) int {
	r := int(math.Sqrt(float64(n)))
	// correct float error in either direction
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
