package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single message inside a channel. SenderID, ChannelID and
// CreatedAt are immutable once created; everything else mutates only
// through the defined transitions.
//
// Deletion has two shapes: a per-viewer hide recorded in HiddenFor, and
// a global tombstone (Deleted=true with content cleared). Tombstoned
// rows are retained so RepliedTo references and ordering stay intact.
//
// Delivered and Seen are monotonic one-way flags; Seen implies
// Delivered.
type Message struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ChannelID       primitive.ObjectID   `bson:"channelId" json:"channelId"`
	SenderID        primitive.ObjectID   `bson:"senderId" json:"senderId"`
	ReceiverID      primitive.ObjectID   `bson:"receiverId" json:"receiverId"`
	Message         *string              `bson:"message" json:"message"`
	ImageURL        *string              `bson:"imageURL" json:"imageURL"`
	BlurredImageURL *string              `bson:"blurredImageURL,omitempty" json:"blurredImageURL,omitempty"`
	IsExclusive     bool                 `bson:"isExclusive" json:"isExclusive"`
	Price           int64                `bson:"price,omitempty" json:"price,omitempty"`
	RepliedTo       *primitive.ObjectID  `bson:"repliedTo" json:"repliedTo"`
	HiddenFor       []primitive.ObjectID `bson:"hiddenFor,omitempty" json:"-"`
	Deleted         bool                 `bson:"deleted" json:"deleted"`
	Edited          bool                 `bson:"edited" json:"edited"`
	Delivered       bool                 `bson:"delivered" json:"delivered"`
	Seen            bool                 `bson:"seen" json:"seen"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	EditedAt        *time.Time           `bson:"editedAt" json:"editedAt"`
	DeletedAt       *time.Time           `bson:"deletedAt" json:"deletedAt"`
}

// HasContent reports whether the message carries text or an image.
func (m *Message) HasContent() bool {
	return (m.Message != nil && *m.Message != "") || (m.ImageURL != nil && *m.ImageURL != "")
}

// HiddenBy reports whether userID has hidden this message for themselves.
func (m *Message) HiddenBy(userID primitive.ObjectID) bool {
	for _, id := range m.HiddenFor {
		if id == userID {
			return true
		}
	}
	return false
}

// DeleteMode selects between the two message deletion shapes.
type DeleteMode string

const (
	DeleteForMe       DeleteMode = "me"
	DeleteForEveryone DeleteMode = "everyone"
)

// ParseDeleteMode maps the :deleted route parameter to a DeleteMode.
// "everyone" and "true" select the global tombstone; "me" and "false"
// select the per-viewer hide.
func ParseDeleteMode(s string) (DeleteMode, bool) {
	switch s {
	case "everyone", "true":
		return DeleteForEveryone, true
	case "me", "false":
		return DeleteForMe, true
	}
	return "", false
}

// MessagePage is one page of channel messages, newest first. NextCursor
// is the id of the last message on the page; pass it back to fetch the
// next (older) page.
type MessagePage struct {
	Messages   []Message `json:"messages"`
	NextCursor string    `json:"next_cursor"`
	HasMore    bool      `json:"has_more"`
}
