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

// MongoMessageRepository implements MessageRepository on MongoDB.
type MongoMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository creates a new Mongo-backed message repository.
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{coll: db.Collection(collMessages)}
}

func (r *MongoMessageRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Message, error) {
	var message domain.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&message); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *MongoMessageRepository) Insert(ctx context.Context, message *domain.Message) error {
	result, err := r.coll.InsertOne(ctx, message)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		message.ID = oid
	}
	return nil
}

// List pages newest-first on _id, which is monotonic with insertion
// order. Messages the viewer hid are excluded; tombstones are returned
// as-is (their content is already cleared).
func (r *MongoMessageRepository) List(ctx context.Context, channelID, viewerID primitive.ObjectID, cursor primitive.ObjectID, limit int) ([]domain.Message, bool, error) {
	filter := bson.M{
		"channelId": channelID,
		"hiddenFor": bson.M{"$ne": viewerID},
	}
	if !cursor.IsZero() {
		filter["_id"] = bson.M{"$lt": cursor}
	}

	// Fetch one extra row to learn whether another page exists.
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit + 1))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, false, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	return messages, hasMore, nil
}

func (r *MongoMessageRepository) ListMedia(ctx context.Context, channelID, viewerID primitive.ObjectID) ([]domain.Message, error) {
	filter := bson.M{
		"channelId": channelID,
		"imageURL":  bson.M{"$nin": bson.A{nil, ""}},
		"deleted":   false,
		"hiddenFor": bson.M{"$ne": viewerID},
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MongoMessageRepository) Latest(ctx context.Context, channelID primitive.ObjectID) (*domain.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	var message domain.Message
	if err := r.coll.FindOne(ctx, bson.M{"channelId": channelID}, opts).Decode(&message); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *MongoMessageRepository) SetText(ctx context.Context, id primitive.ObjectID, text string, editedAt time.Time) error {
	update := bson.M{"$set": bson.M{
		"message":  text,
		"edited":   true,
		"editedAt": editedAt,
	}}
	return r.updateOne(ctx, id, update)
}

func (r *MongoMessageRepository) HideFor(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"hiddenFor": userID}})
}

func (r *MongoMessageRepository) Tombstone(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"deleted":         true,
		"deletedAt":       now,
		"message":         nil,
		"imageURL":        nil,
		"blurredImageURL": nil,
	}}
	return r.updateOne(ctx, id, update)
}

func (r *MongoMessageRepository) MarkDelivered(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"delivered": true}})
}

// MarkSeen sets both flags; seen implies delivered.
func (r *MongoMessageRepository) MarkSeen(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"seen": true, "delivered": true}})
}

func (r *MongoMessageRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *MongoMessageRepository) DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"channelId": channelID})
	return err
}

var _ MessageRepository = (*MongoMessageRepository)(nil)
