package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
)

// MongoChannelRepository implements ChannelRepository on MongoDB.
type MongoChannelRepository struct {
	coll *mongo.Collection
}

// NewMongoChannelRepository creates a new Mongo-backed channel repository.
func NewMongoChannelRepository(db *mongo.Database) *MongoChannelRepository {
	return &MongoChannelRepository{coll: db.Collection(collChannels)}
}

func (r *MongoChannelRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Channel, error) {
	var channel domain.Channel
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&channel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return &channel, nil
}

// GetByParticipants matches the unordered pair. $all degenerates to
// "contains a" when both ids are equal, which would match any channel
// the user participates in; a self-channel needs the exact [a, a] pair.
func (r *MongoChannelRepository) GetByParticipants(ctx context.Context, a, b primitive.ObjectID) (*domain.Channel, error) {
	var filter bson.M
	if a == b {
		filter = bson.M{"participants": []primitive.ObjectID{a, a}}
	} else {
		filter = bson.M{"participants": bson.M{"$all": []primitive.ObjectID{a, b}}}
	}
	var channel domain.Channel
	if err := r.coll.FindOne(ctx, filter).Decode(&channel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return &channel, nil
}

func (r *MongoChannelRepository) Create(ctx context.Context, channel *domain.Channel) error {
	result, err := r.coll.InsertOne(ctx, channel)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		channel.ID = oid
	}
	return nil
}

func (r *MongoChannelRepository) ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]domain.Channel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var channels []domain.Channel
	if err := cursor.All(ctx, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// Touch bumps updatedAt so the channel list sorts by recent activity.
func (r *MongoChannelRepository) Touch(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updatedAt": time.Now()}})
	return err
}

func (r *MongoChannelRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrChannelNotFound
	}
	return nil
}

var _ ChannelRepository = (*MongoChannelRepository)(nil)
