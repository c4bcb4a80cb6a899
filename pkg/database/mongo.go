// Package database owns the MongoDB client shared by all repositories.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ghuser/inventory/pkg/logger"
)

const (
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
	disconnectTimeout = 10 * time.Second
)

// Database wraps a mongo.Client bound to a single logical database.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
	log    logger.Logger
}

// Connect opens a pooled MongoDB client for uri, selects the database name and
// verifies connectivity with a primary ping.
//
// Driver-level retryable reads and writes are disabled: failures surface to the
// caller on the first attempt.
func Connect(ctx context.Context, uri, name string, log logger.Logger) (*Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(2).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout).
		SetRetryReads(false).
		SetRetryWrites(false)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Info("mongodb connected", "database", name)

	return &Database{client: client, db: client.Database(name), log: log}, nil
}

// Collection returns a handle to the named collection.
func (d *Database) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// Name returns the logical database name.
func (d *Database) Name() string {
	return d.db.Name()
}

// Ping checks that the primary is reachable.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

// Close disconnects the client, waiting up to 10s for in-use connections.
func (d *Database) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := d.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	d.log.Info("mongodb disconnected")
	return nil
}
