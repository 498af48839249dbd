package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
)

type channelFixture struct {
	profiles *fakeProfileRepo
	channels *fakeChannelRepo
	messages *fakeMessageRepo
	oracle   *fakeOracle
	svc      ChannelService
	msgSvc   MessageService
	alice    primitive.ObjectID
	bob      primitive.ObjectID
	carol    primitive.ObjectID
}

func newChannelFixture(t *testing.T) *channelFixture {
	t.Helper()

	profiles := newFakeProfileRepo()
	channels := &fakeChannelRepo{}
	messages := &fakeMessageRepo{}
	oracle := &fakeOracle{online: map[string]bool{}}

	clock := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	svc := &channelService{
		channels: channels,
		messages: messages,
		profiles: profiles,
		oracle:   oracle,
		now:      clock,
	}
	msgSvc := &messageService{
		messages: messages,
		channels: svc,
		chRepo:   channels,
		now:      clock,
	}

	f := &channelFixture{
		profiles: profiles,
		channels: channels,
		messages: messages,
		oracle:   oracle,
		svc:      svc,
		msgSvc:   msgSvc,
	}
	f.alice = profiles.add(&domain.UserProfile{Username: "alice", FullName: "Alice"}).UserID
	f.bob = profiles.add(&domain.UserProfile{Username: "bob", FullName: "Bob"}).UserID
	f.carol = profiles.add(&domain.UserProfile{Username: "carol", FullName: "Carol"}).UserID
	return f
}

func (f *channelFixture) send(t *testing.T, sender, receiver primitive.ObjectID, text string) *domain.Message {
	t.Helper()
	msg, err := f.msgSvc.Send(context.Background(), sender, SendMessageInput{
		ReceiverID: receiver,
		Message:    strPtr(text),
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	return msg
}

func TestCreateChannelIdempotentByPair(t *testing.T) {
	f := newChannelFixture(t)

	first, err := f.svc.CreateChannel(context.Background(), f.alice, f.bob)
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	// Reversed order resolves to the same channel.
	second, err := f.svc.CreateChannel(context.Background(), f.bob, f.alice)
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("pair resolved to two channels: %s vs %s", first.ID.Hex(), second.ID.Hex())
	}
}

func TestCreateChannelKeepsSelfChannelSeparate(t *testing.T) {
	f := newChannelFixture(t)

	shared, err := f.svc.CreateChannel(context.Background(), f.alice, f.bob)
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	self, err := f.svc.CreateChannel(context.Background(), f.alice, f.alice)
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	if self.ID == shared.ID {
		t.Fatal("self-channel resolved to the alice-bob channel")
	}

	again, err := f.svc.CreateChannel(context.Background(), f.alice, f.alice)
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	if again.ID != self.ID {
		t.Errorf("self-channel not idempotent: %s vs %s", again.ID.Hex(), self.ID.Hex())
	}
}

func TestGetChannelRequiresParticipant(t *testing.T) {
	f := newChannelFixture(t)

	ch, err := f.svc.CreateChannel(context.Background(), f.alice, f.bob)
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}

	if _, err := f.svc.GetChannel(context.Background(), ch.ID, f.carol); !errors.Is(err, ErrForbidden) {
		t.Errorf("want ErrForbidden, got %v", err)
	}
	if _, err := f.svc.GetChannel(context.Background(), primitive.NewObjectID(), f.alice); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("want ErrChannelNotFound, got %v", err)
	}
}

func TestMessagesPagesNewestFirst(t *testing.T) {
	f := newChannelFixture(t)

	var ids []primitive.ObjectID
	for _, text := range []string{"one", "two", "three", "four", "five"} {
		ids = append(ids, f.send(t, f.alice, f.bob, text).ID)
	}
	channelID := f.messages.messages[0].ChannelID

	page, err := f.svc.Messages(context.Background(), channelID, f.bob, "", 2)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(page.Messages) != 2 || !page.HasMore {
		t.Fatalf("first page: %d messages, hasMore=%v", len(page.Messages), page.HasMore)
	}
	if page.Messages[0].ID != ids[4] || page.Messages[1].ID != ids[3] {
		t.Errorf("first page not newest-first: %v", page.Messages)
	}
	if page.NextCursor != ids[3].Hex() {
		t.Errorf("next cursor = %q, want %q", page.NextCursor, ids[3].Hex())
	}

	page, err = f.svc.Messages(context.Background(), channelID, f.bob, page.NextCursor, 2)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if page.Messages[0].ID != ids[2] || page.Messages[1].ID != ids[1] {
		t.Errorf("second page wrong: %v", page.Messages)
	}

	page, err = f.svc.Messages(context.Background(), channelID, f.bob, page.NextCursor, 2)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(page.Messages) != 1 || page.HasMore || page.NextCursor != "" {
		t.Errorf("last page: %d messages, hasMore=%v, cursor=%q", len(page.Messages), page.HasMore, page.NextCursor)
	}
}

func TestMessagesRejectsBadCursor(t *testing.T) {
	f := newChannelFixture(t)
	f.send(t, f.alice, f.bob, "hello")
	channelID := f.messages.messages[0].ChannelID

	if _, err := f.svc.Messages(context.Background(), channelID, f.alice, "not-an-object-id", 10); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("want ErrInvalidCursor, got %v", err)
	}
}

func TestMediaExcludesDeletedAndNonImages(t *testing.T) {
	f := newChannelFixture(t)

	f.send(t, f.alice, f.bob, "text only")
	kept, err := f.msgSvc.Send(context.Background(), f.alice, SendMessageInput{
		ReceiverID: f.bob,
		ImageURL:   strPtr("https://cdn.example.com/keep.jpg"),
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	removed, err := f.msgSvc.Send(context.Background(), f.alice, SendMessageInput{
		ReceiverID: f.bob,
		ImageURL:   strPtr("https://cdn.example.com/remove.jpg"),
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := f.msgSvc.Delete(context.Background(), removed.ID, f.alice, domain.DeleteForEveryone); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	media, err := f.svc.Media(context.Background(), kept.ChannelID, f.bob)
	if err != nil {
		t.Fatalf("Media: %v", err)
	}
	if len(media) != 1 || media[0].ID != kept.ID {
		t.Errorf("media = %v, want just the surviving image", media)
	}
}

func TestDeleteChannelCascades(t *testing.T) {
	f := newChannelFixture(t)

	msg := f.send(t, f.alice, f.bob, "short lived")
	f.send(t, f.alice, f.carol, "unrelated")

	if err := f.svc.DeleteChannel(context.Background(), msg.ChannelID, f.carol); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider delete: want ErrForbidden, got %v", err)
	}
	if err := f.svc.DeleteChannel(context.Background(), msg.ChannelID, f.bob); err != nil {
		t.Fatalf("DeleteChannel: %v", err)
	}

	if _, err := f.svc.GetChannel(context.Background(), msg.ChannelID, f.alice); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("channel still resolvable: %v", err)
	}
	for _, m := range f.messages.messages {
		if m.ChannelID == msg.ChannelID {
			t.Errorf("message %s survived the cascade", m.ID.Hex())
		}
	}
	if len(f.messages.messages) != 1 {
		t.Errorf("unrelated channel lost messages: %d left", len(f.messages.messages))
	}
}

func TestListChannelsCarriesReceiverAndPreview(t *testing.T) {
	f := newChannelFixture(t)

	f.send(t, f.alice, f.bob, "first")
	latest := f.send(t, f.alice, f.bob, "latest")
	f.oracle.online[f.bob.Hex()] = true

	views, err := f.svc.ListChannels(context.Background(), f.alice)
	if err != nil {
		t.Fatalf("ListChannels: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("want 1 channel view, got %d", len(views))
	}

	view := views[0]
	if view.Receiver == nil || view.Receiver.Username != "bob" {
		t.Fatalf("receiver not resolved: %+v", view.Receiver)
	}
	if !view.Receiver.IsOnline {
		t.Error("receiver presence not annotated")
	}
	if view.LastMessage == nil || view.LastMessage.ID != latest.ID {
		t.Errorf("preview is not the latest message: %+v", view.LastMessage)
	}
}
