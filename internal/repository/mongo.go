package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arijitchhatui/swiftsend-service/internal/config"
)

// Collection names.
const (
	collUserProfiles = "userProfiles"
	collFollowers    = "followers"
	collChannels     = "channels"
	collMessages     = "messages"
)

// Connect connects to MongoDB and returns the service database handle.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes the repositories rely on. The
// unique index on the follower pair is what backs the at-most-one-edge
// invariant under concurrent follows.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	profileIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection(collUserProfiles).Indexes().CreateMany(ctx, profileIndexes); err != nil {
		return fmt.Errorf("failed to create profile indexes: %w", err)
	}

	followIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "followingUserId", Value: 1}, {Key: "followedUserId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "followedUserId", Value: 1}}},
	}
	if _, err := db.Collection(collFollowers).Indexes().CreateMany(ctx, followIndexes); err != nil {
		return fmt.Errorf("failed to create follower indexes: %w", err)
	}

	channelIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants", Value: 1}}},
	}
	if _, err := db.Collection(collChannels).Indexes().CreateMany(ctx, channelIndexes); err != nil {
		return fmt.Errorf("failed to create channel indexes: %w", err)
	}

	messageIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "channelId", Value: 1}, {Key: "_id", Value: -1}}},
	}
	if _, err := db.Collection(collMessages).Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	return nil
}
