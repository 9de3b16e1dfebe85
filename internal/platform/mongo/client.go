// Package mongo connects the optional document store used for blacklist entries.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"caregate/internal/platform/config"
)

// Client wraps a connected mongo client bound to one database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects and pings MongoDB. Returns nil when no URI is configured.
func New(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	if cfg.URI == "" {
		return nil, nil
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &Client{client: client, db: client.Database(cfg.Database)}, nil
}

// Database returns the configured database handle.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Health checks if the Mongo connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// Disconnect closes the underlying client.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
