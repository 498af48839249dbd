package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowEdge is a directed follow relation stored in the followers
// collection. At most one edge exists per ordered pair; unfollow is a
// hard delete.
type FollowEdge struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FollowingUserID primitive.ObjectID `bson:"followingUserId" json:"followingUserId"`
	FollowedUserID  primitive.ObjectID `bson:"followedUserId" json:"followedUserId"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
