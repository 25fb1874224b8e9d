// Package mongodb is the MongoDB driven adapter implementing the EntryStore port.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// entriesCollection is the single collection holding all vault entries.
const entriesCollection = "entries"

// DB wraps the MongoDB client and the vault entries collection handle.
type DB struct {
	Client  *mongo.Client
	Entries *mongo.Collection
}

// NewDB connects to MongoDB at uri and verifies the connection with a ping.
func NewDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &DB{
		Client:  client,
		Entries: client.Database(dbName).Collection(entriesCollection),
	}, nil
}

// Close disconnects the client.
func (db *DB) Close(ctx context.Context) error {
	if err := db.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}
