package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrChannelNotFound = errors.New("channel not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrEdgeNotFound    = errors.New("follow edge not found")
	ErrUsernameExists  = errors.New("username already exists")
)

// ProfileRepository persists user profile documents.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error)
	GetByUsername(ctx context.Context, username string) (*domain.UserProfile, error)
	// UsernameTaken reports whether username belongs to a user other
	// than excludeUserID.
	UsernameTaken(ctx context.Context, username string, excludeUserID primitive.ObjectID) (bool, error)
	// UpdateFields applies a sparse $set and returns the updated document.
	UpdateFields(ctx context.Context, userID primitive.ObjectID, fields map[string]interface{}) (*domain.UserProfile, error)
	AdjustPostCount(ctx context.Context, userID primitive.ObjectID, delta int64) error
	AdjustFollowerCount(ctx context.Context, userID primitive.ObjectID, delta int64) error
	AdjustFollowingCount(ctx context.Context, userID primitive.ObjectID, delta int64) error
	// SetFollowCounts overwrites both denormalized follow counters.
	SetFollowCounts(ctx context.Context, userID primitive.ObjectID, followers, following int64) error
	// ListUserIDs returns the ids of all profiled users.
	ListUserIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

// FollowRepository persists directed follow edges.
type FollowRepository interface {
	Exists(ctx context.Context, followingUserID, followedUserID primitive.ObjectID) (bool, error)
	Create(ctx context.Context, edge *domain.FollowEdge) error
	// Delete hard-deletes the edge and reports whether one was removed.
	Delete(ctx context.Context, followingUserID, followedUserID primitive.ObjectID) (bool, error)
	// ListFollowers returns the profiles of users following userID.
	ListFollowers(ctx context.Context, userID primitive.ObjectID) ([]domain.UserProfile, error)
	// ListFollowing returns the profiles of users userID follows.
	ListFollowing(ctx context.Context, userID primitive.ObjectID) ([]domain.UserProfile, error)
	CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// ChannelRepository persists conversation channels.
type ChannelRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Channel, error)
	// GetByParticipants looks a channel up by its unordered participant pair.
	GetByParticipants(ctx context.Context, a, b primitive.ObjectID) (*domain.Channel, error)
	Create(ctx context.Context, channel *domain.Channel) error
	ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]domain.Channel, error)
	Touch(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MessageRepository persists channel messages.
type MessageRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Message, error)
	Insert(ctx context.Context, message *domain.Message) error
	// List returns one page of channel messages, newest first,
	// excluding messages the viewer has hidden. cursor is the id of
	// the last message of the previous page; pass the zero ObjectID
	// for the first page.
	List(ctx context.Context, channelID, viewerID primitive.ObjectID, cursor primitive.ObjectID, limit int) (messages []domain.Message, hasMore bool, err error)
	// ListMedia returns channel messages carrying an image, excluding
	// tombstoned messages and messages the viewer has hidden.
	ListMedia(ctx context.Context, channelID, viewerID primitive.ObjectID) ([]domain.Message, error)
	// Latest returns the most recent message in the channel, or
	// ErrMessageNotFound for an empty channel.
	Latest(ctx context.Context, channelID primitive.ObjectID) (*domain.Message, error)
	// SetText replaces the text and stamps the edit; the caller supplies
	// the timestamp so the stored document matches what it returns.
	SetText(ctx context.Context, id primitive.ObjectID, text string, editedAt time.Time) error
	// HideFor records a per-viewer hide.
	HideFor(ctx context.Context, id, userID primitive.ObjectID) error
	// Tombstone marks the message deleted for everyone and clears its
	// content fields. The document itself is retained.
	Tombstone(ctx context.Context, id primitive.ObjectID) error
	MarkDelivered(ctx context.Context, id primitive.ObjectID) error
	// MarkSeen sets seen and delivered together.
	MarkSeen(ctx context.Context, id primitive.ObjectID) error
	DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) error
}
