package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
	"github.com/arijitchhatui/swiftsend-service/internal/service"
	pkglog "github.com/arijitchhatui/swiftsend-service/pkg/log"
	"github.com/arijitchhatui/swiftsend-service/pkg/response"
)

// sendMessageRequest is the request body for POST /messages.
type sendMessageRequest struct {
	ReceiverID      string  `json:"receiverId" binding:"required"`
	Message         *string `json:"message"`
	ImageURL        *string `json:"imageURL"`
	BlurredImageURL *string `json:"blurredImageURL"`
	IsExclusive     bool    `json:"isExclusive"`
	Price           int64   `json:"price"`
	RepliedTo       *string `json:"repliedTo"`
}

// SendMessage handles POST /messages.
func (h *Handler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidInput(c, err.Error())
		return
	}

	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		response.InvalidInput(c, "receiverId is not a valid id")
		return
	}

	input := service.SendMessageInput{
		ReceiverID:      receiverID,
		Message:         req.Message,
		ImageURL:        req.ImageURL,
		BlurredImageURL: req.BlurredImageURL,
		IsExclusive:     req.IsExclusive,
		Price:           req.Price,
	}
	if req.RepliedTo != nil {
		repliedTo, err := primitive.ObjectIDFromHex(*req.RepliedTo)
		if err != nil {
			response.InvalidInput(c, "repliedTo is not a valid id")
			return
		}
		input.RepliedTo = &repliedTo
	}

	message, err := h.messages.Send(ctx, requester, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			response.InvalidInput(c, "message requires text or an image")
		case errors.Is(err, service.ErrInvalidReply):
			response.InvalidInput(c, "replied-to message does not belong to this channel")
		default:
			l.Error().Err(err).Msg("send message failed")
			response.InternalError(c, "failed to send message")
		}
		return
	}

	response.Created(c, message)
}

// editMessageRequest is the request body for PATCH /messages/:id/edit.
type editMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// EditMessage handles PATCH /messages/:id/edit.
func (h *Handler) EditMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidInput(c, err.Error())
		return
	}

	message, err := h.messages.Edit(ctx, messageID, requester, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			response.NotFound(c, "message not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "only the sender can edit a message")
		case errors.Is(err, service.ErrMessageDeleted):
			response.Conflict(c, "message is deleted")
		default:
			l.Error().Err(err).Str(pkglog.FieldMessageID, messageID.Hex()).Msg("edit message failed")
			response.InternalError(c, "failed to edit message")
		}
		return
	}

	response.Success(c, message)
}

// DeleteMessage handles DELETE /messages/:id/:target/delete, where
// :target selects the delete mode.
func (h *Handler) DeleteMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}
	mode, ok := domain.ParseDeleteMode(c.Param("target"))
	if !ok {
		response.InvalidInput(c, "delete mode must be 'me' or 'everyone'")
		return
	}

	if err := h.messages.Delete(ctx, messageID, requester, mode); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			response.NotFound(c, "message not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "not allowed to delete this message")
		default:
			l.Error().Err(err).Str(pkglog.FieldMessageID, messageID.Hex()).Msg("delete message failed")
			response.InternalError(c, "failed to delete message")
		}
		return
	}

	response.Success(c, gin.H{"message": "message deleted"})
}

// bulkDeleteRequest is the request body for DELETE /channels/messages/delete.
type bulkDeleteRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required"`
	Mode       string   `json:"mode" binding:"required"`
}

// BulkDeleteMessages handles DELETE /channels/messages/delete. The
// batch never aborts on a bad id; skipped ids are reported with a
// reason.
func (h *Handler) BulkDeleteMessages(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}

	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidInput(c, err.Error())
		return
	}

	mode, ok := domain.ParseDeleteMode(req.Mode)
	if !ok {
		response.InvalidInput(c, "mode must be 'me' or 'everyone'")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.MessageIDs))
	skipped := []service.SkippedMessage{}
	for _, raw := range req.MessageIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			skipped = append(skipped, service.SkippedMessage{ID: raw, Reason: service.SkipReasonNotFound})
			continue
		}
		ids = append(ids, id)
	}

	result, err := h.messages.BulkDelete(ctx, requester, ids, mode)
	if err != nil {
		l.Error().Err(err).Msg("bulk delete failed")
		response.InternalError(c, "failed to delete messages")
		return
	}
	result.Skipped = append(result.Skipped, skipped...)

	response.Success(c, result)
}

// ForwardMessage handles POST /messages/:id/:target/forward, where
// :target is the new receiver's user id.
func (h *Handler) ForwardMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}
	receiverID, ok := pathID(c, "target")
	if !ok {
		return
	}

	message, err := h.messages.Forward(ctx, messageID, receiverID, requester)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			response.NotFound(c, "message not found")
		default:
			l.Error().Err(err).Str(pkglog.FieldMessageID, messageID.Hex()).Msg("forward message failed")
			response.InternalError(c, "failed to forward message")
		}
		return
	}

	response.Created(c, message)
}

// MessageDelivered handles PUT /messages/delivered/:id.
func (h *Handler) MessageDelivered(c *gin.Context) {
	h.markMessage(c, h.messages.MarkDelivered, "delivered")
}

// MessageSeen handles PUT /messages/seen/:id.
func (h *Handler) MessageSeen(c *gin.Context) {
	h.markMessage(c, h.messages.MarkSeen, "seen")
}

func (h *Handler) markMessage(c *gin.Context, mark func(ctx context.Context, id primitive.ObjectID) error, name string) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	if _, ok := requesterID(c); !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := mark(ctx, messageID); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			response.NotFound(c, "message not found")
		default:
			l.Error().Err(err).Str(pkglog.FieldMessageID, messageID.Hex()).Msg("mark " + name + " failed")
			response.InternalError(c, "failed to mark message "+name)
		}
		return
	}

	response.Success(c, gin.H{"message": "message " + name})
}
