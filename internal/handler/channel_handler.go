package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arijitchhatui/swiftsend-service/internal/service"
	pkglog "github.com/arijitchhatui/swiftsend-service/pkg/log"
	"github.com/arijitchhatui/swiftsend-service/pkg/response"
)

// ListChannels handles GET /channels.
func (h *Handler) ListChannels(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}

	channels, err := h.channels.ListChannels(ctx, requester)
	if err != nil {
		l.Error().Err(err).Msg("list channels failed")
		response.InternalError(c, "failed to list channels")
		return
	}

	response.Success(c, channels)
}

// CreateChannel handles POST /channels/create/:userId. It returns the
// existing channel for the pair if one exists.
func (h *Handler) CreateChannel(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	otherID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	channel, err := h.channels.CreateChannel(ctx, requester, otherID)
	if err != nil {
		l.Error().Err(err).Msg("create channel failed")
		response.InternalError(c, "failed to create channel")
		return
	}

	response.Created(c, channel)
}

// GetChannel handles GET /channels/:id.
func (h *Handler) GetChannel(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	channel, err := h.channels.GetChannel(ctx, channelID, requester)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChannelNotFound):
			response.NotFound(c, "channel not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "not a channel participant")
		default:
			l.Error().Err(err).Str(pkglog.FieldChannelID, channelID.Hex()).Msg("get channel failed")
			response.InternalError(c, "failed to get channel")
		}
		return
	}

	response.Success(c, channel)
}

// GetChannelMessages handles GET /channels/:id/messages. Pages are
// newest-first; limit and cursor arrive as query parameters.
func (h *Handler) GetChannelMessages(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	cursor := c.Query("cursor")

	page, err := h.channels.Messages(ctx, channelID, requester, cursor, limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChannelNotFound):
			response.NotFound(c, "channel not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "not a channel participant")
		case errors.Is(err, service.ErrInvalidCursor):
			response.InvalidInput(c, "invalid cursor")
		default:
			l.Error().Err(err).Str(pkglog.FieldChannelID, channelID.Hex()).Msg("get channel messages failed")
			response.InternalError(c, "failed to get messages")
		}
		return
	}

	response.Success(c, page)
}

// GetChannelMedia handles GET /channels/:id/media.
func (h *Handler) GetChannelMedia(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	media, err := h.channels.Media(ctx, channelID, requester)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChannelNotFound):
			response.NotFound(c, "channel not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "not a channel participant")
		default:
			l.Error().Err(err).Str(pkglog.FieldChannelID, channelID.Hex()).Msg("get channel media failed")
			response.InternalError(c, "failed to get media")
		}
		return
	}

	response.Success(c, media)
}

// DeleteChannel handles DELETE /channels/:id/delete. Deleting a channel
// cascades to its messages.
func (h *Handler) DeleteChannel(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.channels.DeleteChannel(ctx, channelID, requester); err != nil {
		switch {
		case errors.Is(err, service.ErrChannelNotFound):
			response.NotFound(c, "channel not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "not a channel participant")
		default:
			l.Error().Err(err).Str(pkglog.FieldChannelID, channelID.Hex()).Msg("delete channel failed")
			response.InternalError(c, "failed to delete channel")
		}
		return
	}

	response.Success(c, gin.H{"message": "channel deleted"})
}
