package game

import (
	"time"
)

// Game result strings on the wire and in the games collection.
const (
	ResultWhiteWin = "white_win"
	ResultBlackWin = "black_win"
	ResultDraw     = "draw"
	ResultNone     = "none"
)

// Persisted game statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
)

// Termination causes.
const (
	CauseCheckmate            = "checkmate"
	CauseStalemate            = "stalemate"
	CauseInsufficientMaterial = "insufficient_material"
	CauseFiftyMove            = "fifty_move_rule"
	CauseThreefold            = "threefold_repetition"
	CauseResignation          = "resignation"
	CauseAgreement            = "agreement"
	CauseAbandonment          = "abandonment"
	CauseInternalError        = "internal_error"
)

// AIUserID is the synthetic opponent handle used for black in AI games.
const AIUserID = "ai"

// Player is one side of a live game. SessionID is zero for the AI side or
// after the player disconnected.
type Player struct {
	UserID    string
	Username  string
	Rating    int
	SessionID uint64
}

// drawOfferNone marks the absence of an outstanding draw offer.
const drawOfferNone Color = -1

// Game is the live, authoritative state of one active game. Owned
// exclusively by the Controller; touched only on the coordinator goroutine.
type Game struct {
	ID    string
	White Player
	Black Player

	Board *Board
	Moves []string

	drawOfferBy Color // drawOfferNone when no offer is outstanding

	AI           bool
	AIDifficulty string
	AIThinking   bool

	StartedAt time.Time
	finished  bool
}

func newLiveGame(id string, white, black Player, ai bool, difficulty string) *Game {
	return &Game{
		ID:           id,
		White:        white,
		Black:        black,
		Board:        NewBoard(),
		drawOfferBy:  drawOfferNone,
		AI:           ai,
		AIDifficulty: difficulty,
		StartedAt:    time.Now().UTC(),
	}
}

// PlayerByUser returns the color of the given user in this game.
func (g *Game) PlayerByUser(userID string) (Color, bool) {
	switch userID {
	case g.White.UserID:
		return White, true
	case g.Black.UserID:
		return Black, true
	}
	return White, false
}

func (g *Game) player(c Color) *Player {
	if c == White {
		return &g.White
	}
	return &g.Black
}

// DrawOfferBy returns the color with an outstanding offer, if any.
func (g *Game) DrawOfferBy() (Color, bool) {
	if g.drawOfferBy == drawOfferNone {
		return White, false
	}
	return g.drawOfferBy, true
}

func (g *Game) setDrawOffer(c Color) {
	g.drawOfferBy = c
}

func (g *Game) clearDrawOffer() {
	g.drawOfferBy = drawOfferNone
}
