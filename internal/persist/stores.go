package persist

import (
	"context"
	"errors"
	"time"
)

// The store shapes the rest of the server programs against. The Mongo
// repositories implement them; tests substitute in-memory fakes.

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrNotFound          = errors.New("not found")
)

// UserRow mirrors one document of the users collection.
type UserRow struct {
	ID           string    `bson:"_id,omitempty"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	Rating       int       `bson:"rating"`
	Games        int       `bson:"games"`
	Wins         int       `bson:"wins"`
	Losses       int       `bson:"losses"`
	Draws        int       `bson:"draws"`
	CreatedAt    time.Time `bson:"created_at"`
}

// ResultCounter selects which counter a finished game increments.
type ResultCounter int

const (
	CountWin ResultCounter = iota
	CountLoss
	CountDraw
)

// UserStore persists users. Rating updates are atomic with the counter
// increments of game finalization.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string, rating int) (*UserRow, error)
	FindByUsername(ctx context.Context, username string) (*UserRow, error)
	FindByID(ctx context.Context, id string) (*UserRow, error)
	// ApplyResult sets the new rating and bumps games plus the matching
	// win/loss/draw counter in a single update.
	ApplyResult(ctx context.Context, id string, newRating int, counter ResultCounter) error
}

// GameRow mirrors one document of the games collection. BlackPlayerID is
// empty for AI games.
type GameRow struct {
	ID            string     `bson:"_id,omitempty"`
	WhitePlayerID string     `bson:"white_player_id"`
	BlackPlayerID string     `bson:"black_player_id,omitempty"`
	WhiteUsername string     `bson:"white_username"`
	BlackUsername string     `bson:"black_username"`
	Moves         []string   `bson:"moves"`
	PGN           string     `bson:"pgn,omitempty"`
	FEN           string     `bson:"fen"`
	Status        string     `bson:"status"` // "active" | "completed" | "aborted"
	Result        string     `bson:"result"` // "white_win" | "black_win" | "draw" | "none"
	Cause         string     `bson:"cause,omitempty"`
	StartTime     time.Time  `bson:"start_time"`
	EndTime       *time.Time `bson:"end_time,omitempty"`
}

// GameStore persists games. AppendMove must be durable before the move is
// broadcast to the players.
type GameStore interface {
	Insert(ctx context.Context, row *GameRow) (string, error)
	AppendMove(ctx context.Context, id, move, fen string) error
	Finalize(ctx context.Context, id, status, result, cause, fen, pgn string, endTime time.Time) error
	FindByID(ctx context.Context, id string) (*GameRow, error)
	// ListByUser returns completed games of a user, most recent first.
	ListByUser(ctx context.Context, userID string, limit int) ([]GameRow, error)
}
