package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/gambitd/server/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DB wraps the Mongo client and the server database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
	timeout  time.Duration
	log      *zap.Logger
}

func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := &DB{
		Client:   client,
		Database: client.Database(cfg.Name),
		timeout:  cfg.QueryTimeout,
		log:      log,
	}
	if err := db.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return db, nil
}

// ensureIndexes creates the required indexes. Called once on startup.
func (db *DB) ensureIndexes(ctx context.Context) error {
	idxCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Database.Collection("users").Indexes().CreateOne(idxCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Database.Collection("games").Indexes().CreateMany(idxCtx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "white_player_id", Value: 1}, {Key: "end_time", Value: -1}}},
		{Keys: bson.D{{Key: "black_player_id", Value: 1}, {Key: "end_time", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Games() *mongo.Collection {
	return db.Database.Collection("games")
}

// opCtx derives the short per-operation context every repository call uses.
func (db *DB) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.timeout)
}

// Close disconnects the client under its own shutdown deadline, so it can
// sit directly in a defer.
func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), db.timeout)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
