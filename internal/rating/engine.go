package rating

import "math"

const (
	// K-factors for the Elo update
	KFactorNew         = 40.0 // users with < 30 sessions swing more
	KFactorMid         = 32.0 // 30-99 sessions
	KFactorExperienced = 24.0 // >= 100 sessions stabilize
	DefaultKFactor     = 32.0

	// Default rating for a new user
	DefaultRating = 1200

	// Fixed "par" opponent: there is no real opponent in a speaking session,
	// so performance is scored against an average-performance baseline.
	ParRating = 1200

	// Rating bounds
	MinRating = 500
	MaxRating = 3000
)

// ExpectedScore calculates the expected performance based on rating difference.
// Formula: 1 / (1 + 10^((ratingB - ratingA) / 400))
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// WinProbability is an alias for ExpectedScore.
func WinProbability(ratingA, ratingB float64) float64 {
	return ExpectedScore(ratingA, ratingB)
}

// KFactor returns the appropriate K-factor based on completed session count.
func KFactor(sessionsCompleted int) float64 {
	switch {
	case sessionsCompleted < 30:
		return KFactorNew
	case sessionsCompleted < 100:
		return KFactorMid
	default:
		return KFactorExperienced
	}
}

// RatingChange returns the rating delta for a session without applying it.
// score is the 0-100 combined session score; it is normalized to 0-1 and
// clamped to prevent extreme changes from out-of-range upstream data.
func RatingChange(currentRating, score, opponentRating int, k float64) int {
	expected := ExpectedScore(float64(currentRating), float64(opponentRating))

	actual := float64(score) / 100.0
	if actual > 1.0 {
		actual = 1.0
	}
	if actual < 0.0 {
		actual = 0.0
	}

	return int(math.Round(k * (actual - expected)))
}

// UpdateRating applies RatingChange to the current rating, keeping the result
// within [MinRating, MaxRating].
func UpdateRating(currentRating, score, opponentRating int, k float64) int {
	newRating := currentRating + RatingChange(currentRating, score, opponentRating, k)

	if newRating < MinRating {
		newRating = MinRating
	}
	if newRating > MaxRating {
		newRating = MaxRating
	}

	return newRating
}

// RatingCategory maps a rating to its named tier.
func RatingCategory(rating int) string {
	switch {
	case rating >= 2000:
		return "Grandmaster"
	case rating >= 1800:
		return "Master"
	case rating >= 1600:
		return "Expert"
	case rating >= 1400:
		return "Advanced"
	case rating >= 1200:
		return "Intermediate"
	case rating >= 1000:
		return "Beginner"
	default:
		return "Novice"
	}
}
