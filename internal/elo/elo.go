package elo

import "math"

// Default tunables for the rating model. Deployments override them through
// configuration, never by editing call sites.
const (
	DefaultKFactor       = 24
	DefaultInitialRating = 1200
)

// Config carries the tunables of the rating model.
type Config struct {
	KFactor       int
	InitialRating int
}

// DefaultConfig returns the stock rating configuration.
func DefaultConfig() Config {
	return Config{KFactor: DefaultKFactor, InitialRating: DefaultInitialRating}
}

// ExpectedScore returns the probability that a player rated ratingA beats a
// player rated ratingB under the standard ELO curve.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// SideRating is the rating of one side of the net. Doubles sides are
// represented by the average of the two players' ratings.
func SideRating(ratings ...int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

// WinnerDelta returns the rating gain for the winning side. The losing side
// loses exactly the same amount, keeping every match zero-sum.
func (c Config) WinnerDelta(winnerRating, loserRating float64) int {
	expected := ExpectedScore(winnerRating, loserRating)
	return int(math.Round(float64(c.KFactor) * (1.0 - expected)))
}

// Category maps a rating to the coarse skill band used across the product.
// Band 1 is the strongest. The mapping is fixed and monotonic so that a
// rating increase can never lower a player's category.
func Category(rating int) int {
	switch {
	case rating >= 1900:
		return 1
	case rating >= 1750:
		return 2
	case rating >= 1600:
		return 3
	case rating >= 1450:
		return 4
	case rating >= 1300:
		return 5
	case rating >= 1150:
		return 6
	case rating >= 1000:
		return 7
	default:
		return 8
	}
}
