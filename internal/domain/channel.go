package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Channel is a two-participant conversation container. It is created
// lazily when the first message between two users is sent and is looked
// up by the unordered participant pair.
type Channel struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Channel) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Other returns the participant that is not userID. For a self-channel
// it returns userID itself.
func (c *Channel) Other(userID primitive.ObjectID) primitive.ObjectID {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return userID
}

// ChannelView is a channel augmented with the other participant's
// profile and the latest message for list previews.
type ChannelView struct {
	Channel
	Receiver    *ProfileView `json:"receiver,omitempty"`
	LastMessage *Message     `json:"lastMessage,omitempty"`
}
