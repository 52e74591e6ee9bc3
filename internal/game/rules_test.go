package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoardStartsAtInitialPosition(t *testing.T) {
	b := NewBoard()

	assert.Equal(t, InitialFEN, b.FEN())
	assert.Equal(t, White, b.Turn())
	assert.Equal(t, StatusOngoing, b.Status())
}

func TestApplyUCIAdvancesPosition(t *testing.T) {
	b := NewBoard()

	require.NoError(t, b.ApplyUCI("e2e4"))
	assert.True(t, strings.HasPrefix(b.FEN(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b"))
	assert.Equal(t, Black, b.Turn())
}

func TestApplyUCIRejectsIllegalMove(t *testing.T) {
	b := NewBoard()

	err := b.ApplyUCI("e2e5")
	require.ErrorIs(t, err, ErrIllegalMove)
	// Position unchanged after a rejected move.
	assert.Equal(t, InitialFEN, b.FEN())
	assert.Equal(t, White, b.Turn())
}

func TestApplyUCIRejectsGarbage(t *testing.T) {
	b := NewBoard()

	require.ErrorIs(t, b.ApplyUCI("castle-long"), ErrIllegalMove)
	require.ErrorIs(t, b.ApplyUCI(""), ErrIllegalMove)
}

func TestFoolsMateCheckmate(t *testing.T) {
	b := NewBoard()

	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		require.NoError(t, b.ApplyUCI(mv))
	}

	assert.Equal(t, StatusCheckmate, b.Status())
	// White is to move and mated, so black delivered the mate.
	assert.Equal(t, White, b.Turn())
}

func TestStalemate(t *testing.T) {
	// Classic king-and-queen stalemate: black to move, no legal moves, not in check.
	b, err := NewBoardFromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)

	assert.Equal(t, StatusStalemate, b.Status())
}

func TestInsufficientMaterial(t *testing.T) {
	b, err := NewBoardFromFEN("8/8/4k3/8/8/4K3/8/8 w - - 0 1")
	require.NoError(t, err)

	assert.Equal(t, StatusInsufficientMaterial, b.Status())
}

func TestPromotion(t *testing.T) {
	b, err := NewBoardFromFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	require.NoError(t, err)

	require.NoError(t, b.ApplyUCI("a7a8q"))
	assert.True(t, strings.HasPrefix(b.FEN(), "Q7/7k"))
}

func TestValidMovesFromStart(t *testing.T) {
	b := NewBoard()

	moves := b.ValidMoves()
	assert.Len(t, moves, 20)
	assert.Contains(t, moves, "e2e4")
	assert.Contains(t, moves, "g1f3")
}

func TestNewBoardFromFENRejectsGarbage(t *testing.T) {
	_, err := NewBoardFromFEN("not a position")
	require.Error(t, err)
}

func TestColorOther(t *testing.T) {
	assert.Equal(t, Black, White.Other())
	assert.Equal(t, White, Black.Other())
	assert.Equal(t, "white", White.String())
	assert.Equal(t, "black", Black.String())
}
