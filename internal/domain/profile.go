package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserProfile is the profile document stored in the userProfiles collection.
// The counters are denormalized and eventually consistent; the reconciler
// periodically recomputes them from the followers collection.
type UserProfile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Username       string             `bson:"username" json:"username"`
	FullName       string             `bson:"fullName" json:"fullName"`
	Bio            string             `bson:"bio" json:"bio"`
	AvatarURL      string             `bson:"avatarURL" json:"avatarURL"`
	BannerURL      string             `bson:"bannerURL" json:"bannerURL"`
	WebsiteURL     string             `bson:"websiteURL" json:"websiteURL"`
	Pronouns       string             `bson:"pronouns" json:"pronouns"`
	PostCount      int64              `bson:"postCount" json:"postCount"`
	FollowerCount  int64              `bson:"followerCount" json:"followerCount"`
	FollowingCount int64              `bson:"followingCount" json:"followingCount"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProfileView is a profile annotated with viewer-relative follow state
// and presence.
type ProfileView struct {
	UserProfile
	IsFollowedByMe bool      `json:"isFollowedByMe"`
	IsFollowing    bool      `json:"isFollowing"`
	IsOnline       bool      `json:"isOnline"`
	LastSeen       time.Time `json:"lastSeen"`
}

// ProfilePatch is a sparse profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Username   *string `json:"username"`
	FullName   *string `json:"fullName"`
	Bio        *string `json:"bio"`
	AvatarURL  *string `json:"avatarURL"`
	BannerURL  *string `json:"bannerURL"`
	WebsiteURL *string `json:"websiteURL"`
	Pronouns   *string `json:"pronouns"`
}
