package elo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedEqualRatings(t *testing.T) {
	assert.InDelta(t, 0.5, Expected(1200, 1200), 1e-9)
}

func TestExpectedStrongerSide(t *testing.T) {
	e := Expected(1600, 1200)
	assert.Greater(t, e, 0.9)
	assert.Less(t, e, 1.0)
	// The two sides' expectations always sum to one.
	assert.InDelta(t, 1.0, e+Expected(1200, 1600), 1e-9)
}

func TestNextWinLossSymmetric(t *testing.T) {
	winner := Next(1200, 1200, ScoreWin)
	loser := Next(1200, 1200, ScoreLoss)

	assert.Equal(t, 1216, winner)
	assert.Equal(t, 1184, loser)
	// Deltas computed from the same entry ratings cancel out.
	assert.Equal(t, 0, (winner-1200)+(loser-1200))
}

func TestNextDrawAgainstEqual(t *testing.T) {
	assert.Equal(t, 1200, Next(1200, 1200, ScoreDraw))
}

func TestNextUpsetPaysMore(t *testing.T) {
	underdog := Next(1000, 1400, ScoreWin)
	favorite := Next(1400, 1000, ScoreWin)

	assert.Greater(t, underdog-1000, 16)
	assert.Less(t, favorite-1400, 16)
}

func TestRatingFloor(t *testing.T) {
	assert.Equal(t, Floor, Next(110, 110, ScoreLoss))
	assert.Equal(t, Floor, Next(Floor, Floor, ScoreLoss))
}

func TestDeltaMatchesNext(t *testing.T) {
	for _, tc := range []struct {
		a, b   int
		actual float64
	}{
		{1200, 1200, ScoreWin},
		{1000, 1400, ScoreLoss},
		{1350, 900, ScoreDraw},
	} {
		assert.Equal(t, Next(tc.a, tc.b, tc.actual)-tc.a, Delta(tc.a, tc.b, tc.actual))
	}
}
