package model

import "math"

const (
	// MinStars and MaxStars bound a single criterion evaluation.
	MinStars = 1
	MaxStars = 5

	// starScale converts a 1-5 star rating to the 0-100 score scale.
	starScale = 20

	// RiskScoreThreshold marks suppliers needing attention on the 0-100 scale.
	RiskScoreThreshold = 70
)

// ScoreFromStars converts a star rating to the 0-100 scale.
func ScoreFromStars(stars float64) float64 {
	return stars * starScale
}

// RoundScore rounds a 0-100 score to the nearest integer value, which is how
// scores are displayed and ranked.
func RoundScore(score float64) int {
	return int(math.Round(score))
}

// AverageStars returns the mean of the given star ratings, or 0 for an empty
// slice.
func AverageStars(stars []int) float64 {
	if len(stars) == 0 {
		return 0
	}
	sum := 0
	for _, s := range stars {
		sum += s
	}
	return float64(sum) / float64(len(stars))
}
