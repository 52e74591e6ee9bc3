package persist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect does not dial eagerly, so a client against an unreachable address
// still lets us exercise the shutdown path without a server.
func TestDBCloseTakesNoArguments(t *testing.T) {
	client, err := mongo.Connect(context.Background(),
		options.Client().ApplyURI("mongodb://127.0.0.1:1").SetServerSelectionTimeout(50*time.Millisecond))
	require.NoError(t, err)

	db := &DB{Client: client, timeout: time.Second}
	require.NoError(t, db.Close())
}
