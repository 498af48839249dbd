package handler

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arijitchhatui/swiftsend-service/internal/service"
	"github.com/arijitchhatui/swiftsend-service/pkg/auth"
	"github.com/arijitchhatui/swiftsend-service/pkg/response"
)

// Handler handles HTTP requests for the messaging and profile surface.
type Handler struct {
	profiles service.ProfileService
	follows  service.FollowService
	channels service.ChannelService
	messages service.MessageService
	authMW   *auth.Middleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	profiles service.ProfileService,
	follows service.FollowService,
	channels service.ChannelService,
	messages service.MessageService,
	authMW *auth.Middleware,
) *Handler {
	return &Handler{
		profiles: profiles,
		follows:  follows,
		channels: channels,
		messages: messages,
		authMW:   authMW,
	}
}

// RegisterRoutes registers all routes onto the Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	authed := r.Group("/", h.authMW.RequireAuth())

	channels := authed.Group("/channels")
	{
		channels.GET("", h.ListChannels)
		channels.POST("/create/:userId", h.CreateChannel)
		channels.DELETE("/messages/delete", h.BulkDeleteMessages)
		channels.GET("/:id", h.GetChannel)
		channels.DELETE("/:id/delete", h.DeleteChannel)
		channels.GET("/:id/messages", h.GetChannelMessages)
		channels.GET("/:id/media", h.GetChannelMedia)
	}

	messages := authed.Group("/messages")
	{
		messages.POST("", h.SendMessage)
		messages.PATCH("/:id/edit", h.EditMessage)
		// :target is the delete mode for delete and the receiver id
		// for forward; gin requires one name per path position.
		messages.DELETE("/:id/:target/delete", h.DeleteMessage)
		messages.POST("/:id/:target/forward", h.ForwardMessage)
		messages.PUT("/seen/:id", h.MessageSeen)
		messages.PUT("/delivered/:id", h.MessageDelivered)
	}

	users := authed.Group("/users")
	{
		users.GET("/search", h.SearchProfiles)
		users.PATCH("", h.UpdateProfile)
		users.GET("/:userId", h.GetProfile)
		users.POST("/:userId/follow", h.Follow)
		users.DELETE("/:userId/follow", h.Unfollow)
		users.GET("/:userId/followers", h.GetFollowers)
		users.GET("/:userId/following", h.GetFollowing)
	}
}

// requesterID parses the authenticated principal's id. A principal
// whose subject is not a valid ObjectID cannot own any resource.
func requesterID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(auth.GetUserID(c))
	if err != nil {
		response.Unauthorized(c, "unauthorized")
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathID parses an ObjectID route parameter.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		response.InvalidInput(c, name+" is not a valid id")
		return primitive.NilObjectID, false
	}
	return id, true
}
