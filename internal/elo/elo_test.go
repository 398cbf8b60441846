package elo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1200, 1200), 0.0001, "equal ratings give even odds")
	assert.InDelta(t, 0.64, ExpectedScore(1300, 1200), 0.01, "higher rating is favoured")

	// The curve is complementary: P(a beats b) + P(b beats a) == 1.
	assert.InDelta(t, 1.0, ExpectedScore(1450, 1100)+ExpectedScore(1100, 1450), 0.0001)
}

func TestWinnerDelta(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("even match yields half the K factor", func(t *testing.T) {
		assert.Equal(t, int(math.Round(float64(cfg.KFactor)*0.5)), cfg.WinnerDelta(1200, 1200))
	})

	t.Run("upset wins pay more than expected wins", func(t *testing.T) {
		upset := cfg.WinnerDelta(1100, 1500)
		expected := cfg.WinnerDelta(1500, 1100)
		assert.Greater(t, upset, expected)
	})

	t.Run("delta is never negative for the winner", func(t *testing.T) {
		assert.GreaterOrEqual(t, cfg.WinnerDelta(2400, 800), 0)
	})

	t.Run("respects a custom K factor", func(t *testing.T) {
		wide := Config{KFactor: 48, InitialRating: 1200}
		assert.Equal(t, 2*cfg.WinnerDelta(1200, 1200), wide.WinnerDelta(1200, 1200))
	})
}

func TestSideRating(t *testing.T) {
	assert.Equal(t, 1200.0, SideRating(1200), "singles side is the player's rating")
	assert.Equal(t, 1250.0, SideRating(1200, 1300), "doubles side is the pair average")
	assert.Equal(t, 0.0, SideRating())
}

func TestCategory(t *testing.T) {
	tests := []struct {
		rating int
		want   int
	}{
		{2100, 1},
		{1900, 1},
		{1899, 2},
		{1700, 3},
		{1500, 4},
		{1350, 5},
		{1200, 6},
		{1000, 7},
		{999, 8},
		{400, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Category(tt.rating), "rating %d", tt.rating)
	}

	// Monotonic: a higher rating never maps to a weaker band.
	prev := Category(0)
	for r := 0; r <= 2400; r += 10 {
		c := Category(r)
		assert.LessOrEqual(t, c, prev, "category regressed at rating %d", r)
		prev = c
	}
}
