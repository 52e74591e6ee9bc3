package game

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"
)

// ErrIllegalMove is returned by ApplyUCI for unparsable or illegal moves.
var ErrIllegalMove = errors.New("illegal move")

// InitialFEN is the standard starting position.
const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Color identifies a side.
type Color int8

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// Status is the arbiter's verdict on a position.
type Status int

const (
	StatusOngoing Status = iota
	StatusCheckmate
	StatusStalemate
	StatusInsufficientMaterial
	StatusFiftyMove
	StatusThreefold
)

// Board wraps the external rule engine. It is the only place the chess
// library is called; everything else sees FEN and UCI strings.
type Board struct {
	g *chess.Game
}

func NewBoard() *Board {
	return &Board{g: chess.NewGame(chess.UseNotation(chess.UCINotation{}))}
}

// NewBoardFromFEN builds a board from an arbitrary position.
func NewBoardFromFEN(fen string) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return &Board{g: chess.NewGame(chess.UseNotation(chess.UCINotation{}), opt)}, nil
}

// ApplyUCI validates and applies one move in UCI notation ("e2e4", "e7e8q").
// The previous position is untouched on failure.
func (b *Board) ApplyUCI(mv string) error {
	if err := b.g.MoveStr(mv); err != nil {
		return fmt.Errorf("%w: %s", ErrIllegalMove, mv)
	}
	return nil
}

// FEN returns the current position.
func (b *Board) FEN() string {
	return b.g.Position().String()
}

// Turn returns the side to move.
func (b *Board) Turn() Color {
	if b.g.Position().Turn() == chess.White {
		return White
	}
	return Black
}

// Status classifies the current position. Fifty-move and threefold draws
// terminate the game as soon as they become claimable.
func (b *Board) Status() Status {
	switch b.g.Method() {
	case chess.Checkmate:
		return StatusCheckmate
	case chess.Stalemate:
		return StatusStalemate
	case chess.InsufficientMaterial:
		return StatusInsufficientMaterial
	case chess.SeventyFiveMoveRule:
		return StatusFiftyMove
	case chess.FivefoldRepetition:
		return StatusThreefold
	}
	for _, m := range b.g.EligibleDraws() {
		switch m {
		case chess.FiftyMoveRule:
			return StatusFiftyMove
		case chess.ThreefoldRepetition:
			return StatusThreefold
		}
	}
	return StatusOngoing
}

// ValidMoves returns every legal move from the current position in UCI
// notation. Used by the AI provider.
func (b *Board) ValidMoves() []string {
	moves := b.g.ValidMoves()
	out := make([]string, len(moves))
	pos := b.g.Position()
	for i, m := range moves {
		out[i] = chess.UCINotation{}.Encode(pos, m)
	}
	return out
}

// Resign records a resignation so the PGN carries the right result tag.
func (b *Board) Resign(c Color) {
	if c == White {
		b.g.Resign(chess.White)
	} else {
		b.g.Resign(chess.Black)
	}
}

// DrawAgreed records a draw by agreement for the PGN result tag.
func (b *Board) DrawAgreed() {
	b.g.Draw(chess.DrawOffer)
}

// PGN renders the move text of the game.
func (b *Board) PGN() string {
	return b.g.String()
}
