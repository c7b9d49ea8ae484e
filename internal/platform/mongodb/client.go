package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	FoodsCollection    = "foods"
	RequestsCollection = "requests"
)

// Connect opens a client for uri and verifies the deployment answers a ping.
func Connect(ctx context.Context, uri string, logger *slog.Logger) (*mongo.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := options.Client().
		ApplyURI(uri).
		SetAppName("shareplate-api").
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb")
	return client, nil
}

// EnsureIndexes creates the indexes the stores rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(RequestsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "food_id", Value: 1}, {Key: "user_email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("requests_food_user_unique"),
		},
		{
			Keys: bson.D{{Key: "user_email", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create request indexes: %w", err)
	}

	_, err = db.Collection(FoodsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "food_status", Value: 1}}},
		{Keys: bson.D{{Key: "donator_email", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create food indexes: %w", err)
	}
	return nil
}
