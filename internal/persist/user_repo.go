package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// userDoc is the on-disk shape; the _id is an ObjectID while the rest of the
// server only ever sees its hex form.
type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Rating       int                `bson:"rating"`
	Games        int                `bson:"games"`
	Wins         int                `bson:"wins"`
	Losses       int                `bson:"losses"`
	Draws        int                `bson:"draws"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d *userDoc) row() *UserRow {
	return &UserRow{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Rating:       d.Rating,
		Games:        d.Games,
		Wins:         d.Wins,
		Losses:       d.Losses,
		Draws:        d.Draws,
		CreatedAt:    d.CreatedAt,
	}
}

// UserRepo is the Mongo-backed UserStore.
type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, username, passwordHash string, rating int) (*UserRow, error) {
	opCtx, cancel := r.db.opCtx(ctx)
	defer cancel()

	doc := &userDoc{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: passwordHash,
		Rating:       rating,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := r.db.Users().InsertOne(opCtx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.row(), nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*UserRow, error) {
	opCtx, cancel := r.db.opCtx(ctx)
	defer cancel()

	var doc userDoc
	err := r.db.Users().FindOne(opCtx, bson.M{"username": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return doc.row(), nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*UserRow, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opCtx, cancel := r.db.opCtx(ctx)
	defer cancel()

	var doc userDoc
	err = r.db.Users().FindOne(opCtx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return doc.row(), nil
}

func (r *UserRepo) ApplyResult(ctx context.Context, id string, newRating int, counter ResultCounter) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	inc := bson.M{"games": 1}
	switch counter {
	case CountWin:
		inc["wins"] = 1
	case CountLoss:
		inc["losses"] = 1
	case CountDraw:
		inc["draws"] = 1
	}

	opCtx, cancel := r.db.opCtx(ctx)
	defer cancel()

	res, err := r.db.Users().UpdateOne(opCtx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"rating": newRating}, "$inc": inc},
	)
	if err != nil {
		return fmt.Errorf("apply result for user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
