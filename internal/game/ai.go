package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/notnil/chess"
)

// AI difficulty levels accepted on the wire.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulty reports whether d is a recognized difficulty.
func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// MoveProvider produces a move for the synthetic opponent. Implementations
// may block; the controller calls them from a bounded worker pool.
type MoveProvider interface {
	ChooseMove(ctx context.Context, fen, difficulty string) (string, error)
}

var errNoLegalMoves = errors.New("no legal moves")

// LocalEngine is the built-in provider: random at easy, one-ply material
// greedy at medium, two-ply material minimax at hard.
type LocalEngine struct{}

func NewLocalEngine() *LocalEngine {
	return &LocalEngine{}
}

var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   100,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
}

func (e *LocalEngine) ChooseMove(ctx context.Context, fen, difficulty string) (string, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("parse fen: %w", err)
	}
	g := chess.NewGame(opt)

	moves := g.ValidMoves()
	if len(moves) == 0 {
		return "", errNoLegalMoves
	}

	pos := g.Position()
	var chosen *chess.Move
	switch difficulty {
	case DifficultyMedium:
		chosen = bestByScore(moves, func(m *chess.Move) int {
			return material(pos.Update(m), pos.Turn())
		})
	case DifficultyHard:
		chosen = bestByScore(moves, func(m *chess.Move) int {
			return searchScore(ctx, pos.Update(m), pos.Turn())
		})
	default:
		chosen = moves[rand.Intn(len(moves))]
	}

	return chess.UCINotation{}.Encode(pos, chosen), nil
}

// bestByScore picks the highest-scoring move, breaking ties randomly so the
// engine does not repeat itself from identical positions.
func bestByScore(moves []*chess.Move, score func(*chess.Move) int) *chess.Move {
	best := moves[0]
	bestScore := score(best)
	ties := 1
	for _, m := range moves[1:] {
		s := score(m)
		switch {
		case s > bestScore:
			best, bestScore, ties = m, s, 1
		case s == bestScore:
			ties++
			if rand.Intn(ties) == 0 {
				best = m
			}
		}
	}
	return best
}

// searchScore evaluates a position one reply deep: the opponent answers with
// their own best material move, and we score what remains for us.
func searchScore(ctx context.Context, pos *chess.Position, us chess.Color) int {
	if ctx.Err() != nil {
		return material(pos, us)
	}
	replies := pos.ValidMoves()
	if len(replies) == 0 {
		// Either we delivered mate or stalemate; mate is worth everything.
		if pos.Status() == chess.Checkmate {
			return 1 << 20
		}
		return 0
	}
	worst := 1 << 30
	for _, r := range replies {
		if s := material(pos.Update(r), us); s < worst {
			worst = s
		}
	}
	return worst
}

// material scores a position as our material minus theirs, in centipawns.
func material(pos *chess.Position, us chess.Color) int {
	score := 0
	for _, piece := range pos.Board().SquareMap() {
		v := pieceValues[piece.Type()]
		if piece.Color() == us {
			score += v
		} else {
			score -= v
		}
	}
	return score
}
