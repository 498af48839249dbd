package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
	"github.com/arijitchhatui/swiftsend-service/internal/presence"
	"github.com/arijitchhatui/swiftsend-service/internal/repository"
	pkglog "github.com/arijitchhatui/swiftsend-service/pkg/log"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// channelService implements ChannelService.
type channelService struct {
	channels repository.ChannelRepository
	messages repository.MessageRepository
	profiles repository.ProfileRepository
	oracle   presence.Oracle
	now      func() time.Time
}

// NewChannelService creates a new ChannelService instance.
func NewChannelService(
	channels repository.ChannelRepository,
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
	oracle presence.Oracle,
) ChannelService {
	return &channelService{
		channels: channels,
		messages: messages,
		profiles: profiles,
		oracle:   oracle,
		now:      time.Now,
	}
}

// CreateChannel resolves the channel for the unordered pair, creating
// it if none exists. Calling it twice for the same pair returns the
// same channel.
func (s *channelService) CreateChannel(ctx context.Context, requesterID, otherUserID primitive.ObjectID) (*domain.Channel, error) {
	existing, err := s.channels.GetByParticipants(ctx, requesterID, otherUserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrChannelNotFound) {
		return nil, err
	}

	now := s.now()
	channel := &domain.Channel{
		Participants: []primitive.ObjectID{requesterID, otherUserID},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

func (s *channelService) ListChannels(ctx context.Context, requesterID primitive.ObjectID) ([]domain.ChannelView, error) {
	l := pkglog.Ctx(ctx)

	channels, err := s.channels.ListByParticipant(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ChannelView, 0, len(channels))
	for i := range channels {
		view := domain.ChannelView{Channel: channels[i]}
		otherID := channels[i].Other(requesterID)

		profile, err := s.profiles.GetByUserID(ctx, otherID)
		switch {
		case err == nil:
			online, perr := s.oracle.IsOnline(ctx, otherID.Hex())
			if perr != nil {
				l.Warn().Err(perr).Str(pkglog.FieldUserID, otherID.Hex()).Msg("presence lookup failed")
			}
			view.Receiver = &domain.ProfileView{
				UserProfile: *profile,
				IsOnline:    online,
				LastSeen:    s.now(),
			}
		case errors.Is(err, repository.ErrProfileNotFound):
			// Participant without a profile; keep the channel visible.
		default:
			return nil, err
		}

		latest, err := s.messages.Latest(ctx, channels[i].ID)
		switch {
		case err == nil:
			view.LastMessage = latest
		case errors.Is(err, repository.ErrMessageNotFound):
		default:
			return nil, err
		}

		views = append(views, view)
	}
	return views, nil
}

func (s *channelService) GetChannel(ctx context.Context, channelID, requesterID primitive.ObjectID) (*domain.Channel, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrChannelNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	if !channel.HasParticipant(requesterID) {
		return nil, ErrForbidden
	}
	return channel, nil
}

// Messages pages newest-first. Messages the requester individually
// deleted are excluded; tombstones stay in the page with cleared
// content.
func (s *channelService) Messages(ctx context.Context, channelID, requesterID primitive.ObjectID, cursor string, limit int) (*domain.MessagePage, error) {
	if _, err := s.GetChannel(ctx, channelID, requesterID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var cursorID primitive.ObjectID
	if cursor != "" {
		parsed, err := primitive.ObjectIDFromHex(cursor)
		if err != nil {
			return nil, ErrInvalidCursor
		}
		cursorID = parsed
	}

	messages, hasMore, err := s.messages.List(ctx, channelID, requesterID, cursorID, limit)
	if err != nil {
		return nil, err
	}

	page := &domain.MessagePage{
		Messages: messages,
		HasMore:  hasMore,
	}
	if hasMore && len(messages) > 0 {
		page.NextCursor = messages[len(messages)-1].ID.Hex()
	}
	return page, nil
}

func (s *channelService) Media(ctx context.Context, channelID, requesterID primitive.ObjectID) ([]domain.Message, error) {
	if _, err := s.GetChannel(ctx, channelID, requesterID); err != nil {
		return nil, err
	}
	return s.messages.ListMedia(ctx, channelID, requesterID)
}

// DeleteChannel removes the channel and cascades deletion to its
// messages. Only a participant may delete it.
func (s *channelService) DeleteChannel(ctx context.Context, channelID, requesterID primitive.ObjectID) error {
	if _, err := s.GetChannel(ctx, channelID, requesterID); err != nil {
		return err
	}

	if err := s.messages.DeleteByChannel(ctx, channelID); err != nil {
		return err
	}
	if err := s.channels.Delete(ctx, channelID); err != nil {
		if errors.Is(err, repository.ErrChannelNotFound) {
			// Concurrent delete; the cascade already ran.
			return nil
		}
		return err
	}
	return nil
}

var _ ChannelService = (*channelService)(nil)
