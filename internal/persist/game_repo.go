package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type gameDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	WhitePlayerID string             `bson:"white_player_id"`
	BlackPlayerID string             `bson:"black_player_id,omitempty"`
	WhiteUsername string             `bson:"white_username"`
	BlackUsername string             `bson:"black_username"`
	Moves         []string           `bson:"moves"`
	PGN           string             `bson:"pgn,omitempty"`
	FEN           string             `bson:"fen"`
	Status        string             `bson:"status"`
	Result        string             `bson:"result"`
	Cause         string             `bson:"cause,omitempty"`
	StartTime     time.Time          `bson:"start_time"`
	EndTime       *time.Time         `bson:"end_time,omitempty"`
}

func (d *gameDoc) row() *GameRow {
	return &GameRow{
		ID:            d.ID.Hex(),
		WhitePlayerID: d.WhitePlayerID,
		BlackPlayerID: d.BlackPlayerID,
		WhiteUsername: d.WhiteUsername,
		BlackUsername: d.BlackUsername,
		Moves:         d.Moves,
		PGN:           d.PGN,
		FEN:           d.FEN,
		Status:        d.Status,
		Result:        d.Result,
		Cause:         d.Cause,
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
	}
}

// GameRepo is the Mongo-backed GameStore.
type GameRepo struct {
	db *DB
}

func NewGameRepo(db *DB) *GameRepo {
	return &GameRepo{db: db}
}

func (r *GameRepo) Insert(ctx context.Context, row *GameRow) (string, error) {
	opCtx, cancel := r.db.opCtx(ctx)
	defer cancel()

	doc := &gameDoc{
		ID:            primitive.NewObjectID(),
		WhitePlayerID: row.WhitePlayerID,
		BlackPlayerID: row.BlackPlayerID,
		WhiteUsername: row.WhiteUsername,
		BlackUsername: row.BlackUsername,
		Moves:         []string{},
		FEN:           row.FEN,
		Status:        row.Status,
		Result:        row.Result,
		StartTime:     row.StartTime,
	}
	if _, err := r.db.Games().InsertOne(opCtx, doc); err != nil {
		return "", fmt.Errorf("insert game: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *GameRepo) AppendMove(ctx context.Context, id, move, fen string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	opCtx, cancel := r.db.opCtx(ctx)
	defer cancel()

	res, err := r.db.Games().UpdateOne(opCtx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"moves": move}, "$set": bson.M{"fen": fen}},
	)
	if err != nil {
		return fmt.Errorf("append move to game %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GameRepo) Finalize(ctx context.Context, id, status, result, cause, fen, pgn string, endTime time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	opCtx, cancel := r.db.opCtx(ctx)
	defer cancel()

	res, err := r.db.Games().UpdateOne(opCtx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"status":   status,
			"result":   result,
			"cause":    cause,
			"fen":      fen,
			"pgn":      pgn,
			"end_time": endTime,
		}},
	)
	if err != nil {
		return fmt.Errorf("finalize game %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GameRepo) FindByID(ctx context.Context, id string) (*GameRow, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opCtx, cancel := r.db.opCtx(ctx)
	defer cancel()

	var doc gameDoc
	err = r.db.Games().FindOne(opCtx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find game %s: %w", id, err)
	}
	return doc.row(), nil
}

func (r *GameRepo) ListByUser(ctx context.Context, userID string, limit int) ([]GameRow, error) {
	opCtx, cancel := r.db.opCtx(ctx)
	defer cancel()

	filter := bson.M{
		"status": "completed",
		"$or": []bson.M{
			{"white_player_id": userID},
			{"black_player_id": userID},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "end_time", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.db.Games().Find(opCtx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list games for user %s: %w", userID, err)
	}
	defer cur.Close(opCtx)

	var rows []GameRow
	for cur.Next(opCtx) {
		var doc gameDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode game row: %w", err)
		}
		rows = append(rows, *doc.row())
	}
	return rows, cur.Err()
}
