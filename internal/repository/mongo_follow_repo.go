package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
)

// MongoFollowRepository implements FollowRepository on MongoDB.
type MongoFollowRepository struct {
	coll *mongo.Collection
}

// NewMongoFollowRepository creates a new Mongo-backed follow repository.
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{coll: db.Collection(collFollowers)}
}

func pairFilter(followingUserID, followedUserID primitive.ObjectID) bson.M {
	return bson.M{
		"followingUserId": followingUserID,
		"followedUserId":  followedUserID,
	}
}

func (r *MongoFollowRepository) Exists(ctx context.Context, followingUserID, followedUserID primitive.ObjectID) (bool, error) {
	filter := pairFilter(followingUserID, followedUserID)
	count, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoFollowRepository) Create(ctx context.Context, edge *domain.FollowEdge) error {
	result, err := r.coll.InsertOne(ctx, edge)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		edge.ID = oid
	}
	return nil
}

func (r *MongoFollowRepository) Delete(ctx context.Context, followingUserID, followedUserID primitive.ObjectID) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, pairFilter(followingUserID, followedUserID))
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// ListFollowers joins each inbound edge with the follower's profile.
func (r *MongoFollowRepository) ListFollowers(ctx context.Context, userID primitive.ObjectID) ([]domain.UserProfile, error) {
	return r.listRelated(ctx, bson.M{"followedUserId": userID}, "followingUserId")
}

// ListFollowing joins each outbound edge with the followed profile.
func (r *MongoFollowRepository) ListFollowing(ctx context.Context, userID primitive.ObjectID) ([]domain.UserProfile, error) {
	return r.listRelated(ctx, bson.M{"followingUserId": userID}, "followedUserId")
}

func (r *MongoFollowRepository) listRelated(ctx context.Context, match bson.M, localField string) ([]domain.UserProfile, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collUserProfiles,
			"localField":   localField,
			"foreignField": "userId",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$user",
			"preserveNullAndEmptyArrays": false,
		}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$user"}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []domain.UserProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *MongoFollowRepository) CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"followedUserId": userID})
}

func (r *MongoFollowRepository) CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"followingUserId": userID})
}

var _ FollowRepository = (*MongoFollowRepository)(nil)
