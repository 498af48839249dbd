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

// MongoProfileRepository implements ProfileRepository on MongoDB.
type MongoProfileRepository struct {
	coll *mongo.Collection
}

// NewMongoProfileRepository creates a new Mongo-backed profile repository.
func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{coll: db.Collection(collUserProfiles)}
}

func (r *MongoProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *MongoProfileRepository) GetByUsername(ctx context.Context, username string) (*domain.UserProfile, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoProfileRepository) findOne(ctx context.Context, filter bson.M) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	if err := r.coll.FindOne(ctx, filter).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *MongoProfileRepository) UsernameTaken(ctx context.Context, username string, excludeUserID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"username": username,
		"userId":   bson.M{"$ne": excludeUserID},
	}
	count, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoProfileRepository) UpdateFields(ctx context.Context, userID primitive.ObjectID, fields map[string]interface{}) (*domain.UserProfile, error) {
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domain.UserProfile
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"userId": userID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoProfileRepository) AdjustPostCount(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	return r.adjust(ctx, userID, "postCount", delta)
}

func (r *MongoProfileRepository) AdjustFollowerCount(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	return r.adjust(ctx, userID, "followerCount", delta)
}

func (r *MongoProfileRepository) AdjustFollowingCount(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	return r.adjust(ctx, userID, "followingCount", delta)
}

func (r *MongoProfileRepository) adjust(ctx context.Context, userID primitive.ObjectID, field string, delta int64) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}

func (r *MongoProfileRepository) SetFollowCounts(ctx context.Context, userID primitive.ObjectID, followers, following int64) error {
	update := bson.M{"$set": bson.M{
		"followerCount":  followers,
		"followingCount": following,
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, update)
	return err
}

func (r *MongoProfileRepository) ListUserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"userId": 1})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			UserID primitive.ObjectID `bson:"userId"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.UserID)
	}
	return ids, cursor.Err()
}

var _ ProfileRepository = (*MongoProfileRepository)(nil)
