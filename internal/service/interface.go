package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrChannelNotFound   = errors.New("channel not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrForbidden         = errors.New("forbidden")
	ErrSelfFollow        = errors.New("cannot follow yourself")
	ErrNothingToUnfollow = errors.New("nothing to unfollow")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrEmptyQuery        = errors.New("search query cannot be empty")
	ErrEmptyMessage      = errors.New("message requires text or an image")
	ErrMessageDeleted    = errors.New("message is deleted")
	ErrInvalidReply      = errors.New("replied-to message does not belong to this channel")
	ErrInvalidCursor     = errors.New("invalid pagination cursor")
)

// ProfileService defines profile lookup, mutation and search.
type ProfileService interface {
	// Find resolves usernameOrID by id when it parses as an ObjectID,
	// otherwise by normalized username, and annotates the result with
	// viewer-relative follow state and presence.
	Find(ctx context.Context, viewerID primitive.ObjectID, usernameOrID string) (*domain.ProfileView, error)
	// Update applies a sparse patch; absent fields are left untouched.
	Update(ctx context.Context, userID primitive.ObjectID, patch domain.ProfilePatch) (*domain.UserProfile, error)
	// Search matches username or full name via the full-text index.
	Search(ctx context.Context, query string) ([]domain.ProfileView, error)
	// AdjustPostCount is called by the post subsystem on publish/remove.
	AdjustPostCount(ctx context.Context, userID primitive.ObjectID, delta int64) error
}

// UnfollowOutcome distinguishes a completed unfollow from the race
// where a duplicate edge survived the delete.
type UnfollowOutcome int

const (
	UnfollowDone UnfollowOutcome = iota
	// UnfollowStillFollowed means the defensive re-check found an edge
	// after the delete; counters were left untouched.
	UnfollowStillFollowed
)

// FollowService defines the follow graph operations.
type FollowService interface {
	Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) (UnfollowOutcome, error)
	Followers(ctx context.Context, userID, viewerID primitive.ObjectID) ([]domain.ProfileView, error)
	Following(ctx context.Context, userID, viewerID primitive.ObjectID) ([]domain.ProfileView, error)
}

// ChannelService defines conversation container operations.
type ChannelService interface {
	// CreateChannel returns the existing channel for the unordered
	// pair if one exists; idempotent by pair.
	CreateChannel(ctx context.Context, requesterID, otherUserID primitive.ObjectID) (*domain.Channel, error)
	ListChannels(ctx context.Context, requesterID primitive.ObjectID) ([]domain.ChannelView, error)
	GetChannel(ctx context.Context, channelID, requesterID primitive.ObjectID) (*domain.Channel, error)
	// Messages pages newest-first; cursor is the next_cursor of the
	// previous page, empty for the first page.
	Messages(ctx context.Context, channelID, requesterID primitive.ObjectID, cursor string, limit int) (*domain.MessagePage, error)
	Media(ctx context.Context, channelID, requesterID primitive.ObjectID) ([]domain.Message, error)
	// DeleteChannel removes the channel and cascades to its messages.
	DeleteChannel(ctx context.Context, channelID, requesterID primitive.ObjectID) error
}

// SendMessageInput carries a new message. Exactly one of Message or
// ImageURL must be set, or both for a captioned image; monetized
// images additionally carry BlurredImageURL, IsExclusive and Price.
type SendMessageInput struct {
	ReceiverID      primitive.ObjectID
	Message         *string
	ImageURL        *string
	BlurredImageURL *string
	IsExclusive     bool
	Price           int64
	RepliedTo       *primitive.ObjectID
}

// SkippedMessage reports a message a bulk delete could not affect.
type SkippedMessage struct {
	ID     string `json:"id"`
	Reason string `json:"reason"` // not_found | forbidden
}

const (
	SkipReasonNotFound  = "not_found"
	SkipReasonForbidden = "forbidden"
)

// BulkDeleteResult is the partial-failure report of a bulk delete.
type BulkDeleteResult struct {
	Deleted []string         `json:"deleted"`
	Skipped []SkippedMessage `json:"skipped"`
}

// MessageService defines the message lifecycle operations.
type MessageService interface {
	Send(ctx context.Context, senderID primitive.ObjectID, input SendMessageInput) (*domain.Message, error)
	Edit(ctx context.Context, messageID, requesterID primitive.ObjectID, text string) (*domain.Message, error)
	Delete(ctx context.Context, messageID, requesterID primitive.ObjectID, mode domain.DeleteMode) error
	// BulkDelete never aborts the batch: authorized ids are deleted,
	// the rest are reported in the result.
	BulkDelete(ctx context.Context, requesterID primitive.ObjectID, messageIDs []primitive.ObjectID, mode domain.DeleteMode) (*BulkDeleteResult, error)
	// Forward copies content into the forwarder/receiver channel with
	// fresh state; it is a copy, not a reference.
	Forward(ctx context.Context, messageID, newReceiverID, forwarderID primitive.ObjectID) (*domain.Message, error)
	MarkDelivered(ctx context.Context, messageID primitive.ObjectID) error
	MarkSeen(ctx context.Context, messageID primitive.ObjectID) error
}
