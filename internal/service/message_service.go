package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
	"github.com/arijitchhatui/swiftsend-service/internal/repository"
	pkglog "github.com/arijitchhatui/swiftsend-service/pkg/log"
)

// messageService implements MessageService.
type messageService struct {
	messages repository.MessageRepository
	channels ChannelService
	chRepo   repository.ChannelRepository
	now      func() time.Time
}

// NewMessageService creates a new MessageService instance.
func NewMessageService(
	messages repository.MessageRepository,
	channels ChannelService,
	chRepo repository.ChannelRepository,
) MessageService {
	return &messageService{
		messages: messages,
		channels: channels,
		chRepo:   chRepo,
		now:      time.Now,
	}
}

// Send resolves or creates the channel for the pair and inserts the
// message with all lifecycle flags at their initial state.
func (s *messageService) Send(ctx context.Context, senderID primitive.ObjectID, input SendMessageInput) (*domain.Message, error) {
	l := pkglog.Ctx(ctx)

	message := &domain.Message{
		SenderID:        senderID,
		ReceiverID:      input.ReceiverID,
		Message:         input.Message,
		ImageURL:        input.ImageURL,
		BlurredImageURL: input.BlurredImageURL,
		IsExclusive:     input.IsExclusive,
		Price:           input.Price,
		CreatedAt:       s.now(),
	}
	if !message.HasContent() {
		return nil, ErrEmptyMessage
	}

	channel, err := s.channels.CreateChannel(ctx, senderID, input.ReceiverID)
	if err != nil {
		return nil, err
	}
	message.ChannelID = channel.ID

	if input.RepliedTo != nil {
		replied, err := s.messages.GetByID(ctx, *input.RepliedTo)
		if err != nil {
			if errors.Is(err, repository.ErrMessageNotFound) {
				return nil, ErrInvalidReply
			}
			return nil, err
		}
		if replied.ChannelID != channel.ID {
			return nil, ErrInvalidReply
		}
		message.RepliedTo = input.RepliedTo
	}

	if err := s.messages.Insert(ctx, message); err != nil {
		return nil, err
	}

	if err := s.chRepo.Touch(ctx, channel.ID); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldChannelID, channel.ID.Hex()).Msg("failed to touch channel")
	}

	return message, nil
}

// Edit mutates the text of a sender's own message. Tombstoned messages
// cannot be edited.
func (s *messageService) Edit(ctx context.Context, messageID, requesterID primitive.ObjectID, text string) (*domain.Message, error) {
	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != requesterID {
		return nil, ErrForbidden
	}
	if message.Deleted {
		return nil, ErrMessageDeleted
	}

	now := s.now()
	if err := s.messages.SetText(ctx, messageID, text, now); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	message.Message = &text
	message.Edited = true
	message.EditedAt = &now
	return message, nil
}

func (s *messageService) Delete(ctx context.Context, messageID, requesterID primitive.ObjectID, mode domain.DeleteMode) error {
	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	return s.deleteLoaded(ctx, message, requesterID, mode)
}

func (s *messageService) deleteLoaded(ctx context.Context, message *domain.Message, requesterID primitive.ObjectID, mode domain.DeleteMode) error {
	switch mode {
	case domain.DeleteForEveryone:
		// Only the sender may delete for everyone; the tombstone keeps
		// the row so replies and ordering stay intact.
		if message.SenderID != requesterID {
			return ErrForbidden
		}
		return s.messages.Tombstone(ctx, message.ID)
	default:
		// Delete for me: any participant may hide the message from
		// their own view.
		if message.SenderID != requesterID && message.ReceiverID != requesterID {
			return ErrForbidden
		}
		return s.messages.HideFor(ctx, message.ID, requesterID)
	}
}

// BulkDelete applies the delete to every id the requester may affect
// and reports the rest; a bad id never aborts the batch.
func (s *messageService) BulkDelete(ctx context.Context, requesterID primitive.ObjectID, messageIDs []primitive.ObjectID, mode domain.DeleteMode) (*BulkDeleteResult, error) {
	l := pkglog.Ctx(ctx)
	result := &BulkDeleteResult{
		Deleted: []string{},
		Skipped: []SkippedMessage{},
	}

	for _, id := range messageIDs {
		message, err := s.getMessage(ctx, id)
		if err != nil {
			if errors.Is(err, ErrMessageNotFound) {
				result.Skipped = append(result.Skipped, SkippedMessage{ID: id.Hex(), Reason: SkipReasonNotFound})
				continue
			}
			return nil, err
		}

		if err := s.deleteLoaded(ctx, message, requesterID, mode); err != nil {
			if errors.Is(err, ErrForbidden) {
				result.Skipped = append(result.Skipped, SkippedMessage{ID: id.Hex(), Reason: SkipReasonForbidden})
				continue
			}
			l.Error().Err(err).Str(pkglog.FieldMessageID, id.Hex()).Msg("bulk delete failed for message")
			return nil, err
		}
		result.Deleted = append(result.Deleted, id.Hex())
	}

	return result, nil
}

// Forward copies content into the forwarder/receiver channel. Delivery,
// seen and edit state are not copied and there is no link back to the
// original.
func (s *messageService) Forward(ctx context.Context, messageID, newReceiverID, forwarderID primitive.ObjectID) (*domain.Message, error) {
	source, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if source.Deleted {
		return nil, ErrMessageNotFound
	}

	channel, err := s.channels.CreateChannel(ctx, forwarderID, newReceiverID)
	if err != nil {
		return nil, err
	}

	forwarded := &domain.Message{
		ChannelID:       channel.ID,
		SenderID:        forwarderID,
		ReceiverID:      newReceiverID,
		Message:         source.Message,
		ImageURL:        source.ImageURL,
		BlurredImageURL: source.BlurredImageURL,
		IsExclusive:     source.IsExclusive,
		Price:           source.Price,
		CreatedAt:       s.now(),
	}
	if err := s.messages.Insert(ctx, forwarded); err != nil {
		return nil, err
	}

	if err := s.chRepo.Touch(ctx, channel.ID); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldChannelID, channel.ID.Hex()).Msg("failed to touch channel")
	}

	return forwarded, nil
}

// MarkDelivered is a monotonic transition; marking an already
// delivered message is a no-op.
func (s *messageService) MarkDelivered(ctx context.Context, messageID primitive.ObjectID) error {
	if err := s.messages.MarkDelivered(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}

// MarkSeen sets seen and, since seen implies delivered, delivered too.
func (s *messageService) MarkSeen(ctx context.Context, messageID primitive.ObjectID) error {
	if err := s.messages.MarkSeen(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}

func (s *messageService) getMessage(ctx context.Context, id primitive.ObjectID) (*domain.Message, error) {
	message, err := s.messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return message, nil
}

var _ MessageService = (*messageService)(nil)
