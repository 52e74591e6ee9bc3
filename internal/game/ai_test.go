package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseMoveIsLegalAtEveryDifficulty(t *testing.T) {
	engine := NewLocalEngine()

	for _, d := range []string{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		t.Run(d, func(t *testing.T) {
			mv, err := engine.ChooseMove(context.Background(), InitialFEN, d)
			require.NoError(t, err)

			b := NewBoard()
			assert.NoError(t, b.ApplyUCI(mv), "engine move %q must be legal", mv)
		})
	}
}

func TestChooseMoveTakesHangingQueen(t *testing.T) {
	engine := NewLocalEngine()

	// White rook on a1 can take the undefended black queen on a8.
	fen := "q3k3/8/8/8/8/8/8/R3K3 w - - 0 1"

	for _, d := range []string{DifficultyMedium, DifficultyHard} {
		t.Run(d, func(t *testing.T) {
			mv, err := engine.ChooseMove(context.Background(), fen, d)
			require.NoError(t, err)
			assert.Equal(t, "a1a8", mv)
		})
	}
}

func TestChooseMoveNoLegalMoves(t *testing.T) {
	engine := NewLocalEngine()

	// Stalemate: black to move with nothing legal.
	_, err := engine.ChooseMove(context.Background(), "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", DifficultyEasy)
	require.Error(t, err)
}

func TestChooseMoveBadFEN(t *testing.T) {
	engine := NewLocalEngine()

	_, err := engine.ChooseMove(context.Background(), "nonsense", DifficultyEasy)
	require.Error(t, err)
}

func TestValidDifficulty(t *testing.T) {
	assert.True(t, ValidDifficulty("easy"))
	assert.True(t, ValidDifficulty("medium"))
	assert.True(t, ValidDifficulty("hard"))
	assert.False(t, ValidDifficulty("grandmaster"))
	assert.False(t, ValidDifficulty(""))
}
