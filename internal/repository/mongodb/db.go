// Package mongodb implements the repository contracts over the document
// store. The structured layer maps onto collection find/count/aggregate
// calls; the free-text path runs native pipelines with a $search stage.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	collProducts       = "products"
	collCategories     = "categories"
	collBrands         = "brands"
	collCollections    = "collections"
	collSpecifications = "specification_definitions"
)

// DB holds the client and database handle shared by the repositories.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes a client, verifies connectivity, and returns a DB
// bound to the named database.
func Connect(ctx context.Context, uri, name string) (*DB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &DB{client: client, db: client.Database(name)}, nil
}

// Ping checks whether the store is reachable.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *DB) collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}
