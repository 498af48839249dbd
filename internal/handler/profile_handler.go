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

// GetProfile handles GET /users/:userId. The parameter may be a user
// id or a username.
func (h *Handler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}

	usernameOrID := c.Param("userId")
	if usernameOrID == "" {
		response.InvalidInput(c, "user id or username is required")
		return
	}

	profile, err := h.profiles.Find(ctx, requester, usernameOrID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFound(c, "user not found")
		default:
			l.Error().Err(err).Msg("find profile failed")
			response.InternalError(c, "failed to find profile")
		}
		return
	}

	response.Success(c, profile)
}

// UpdateProfile handles PATCH /users. Absent fields are left untouched.
func (h *Handler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}

	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.InvalidInput(c, err.Error())
		return
	}

	profile, err := h.profiles.Update(ctx, requester, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, service.ErrUsernameTaken):
			response.Conflict(c, "username already exists")
		default:
			l.Error().Err(err).Msg("update profile failed")
			response.InternalError(c, "failed to update profile")
		}
		return
	}

	response.Success(c, profile)
}

// SearchProfiles handles GET /users/search?q=.
func (h *Handler) SearchProfiles(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	if _, ok := requesterID(c); !ok {
		return
	}

	results, err := h.profiles.Search(ctx, c.Query("q"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyQuery):
			response.InvalidInput(c, "query cannot be empty")
		default:
			l.Error().Err(err).Msg("search profiles failed")
			response.InternalError(c, "failed to search profiles")
		}
		return
	}

	response.Success(c, results)
}

// Follow handles POST /users/:userId/follow.
func (h *Handler) Follow(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	if err := h.follows.Follow(ctx, requester, targetID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			response.InvalidInput(c, "you can't follow yourself")
		default:
			l.Error().Err(err).Str(pkglog.FieldUserID, targetID.Hex()).Msg("follow failed")
			response.InternalError(c, "failed to follow user")
		}
		return
	}

	response.Success(c, gin.H{"message": "followed successfully"})
}

// Unfollow handles DELETE /users/:userId/follow.
func (h *Handler) Unfollow(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	outcome, err := h.follows.Unfollow(ctx, requester, targetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNothingToUnfollow):
			response.InvalidInput(c, "nothing to unfollow")
		default:
			l.Error().Err(err).Str(pkglog.FieldUserID, targetID.Hex()).Msg("unfollow failed")
			response.InternalError(c, "failed to unfollow user")
		}
		return
	}

	if outcome == service.UnfollowStillFollowed {
		response.Success(c, gin.H{"message": "user is still followed"})
		return
	}

	response.Success(c, gin.H{"message": "unfollowed successfully"})
}

// GetFollowers handles GET /users/:userId/followers.
func (h *Handler) GetFollowers(c *gin.Context) {
	h.listRelated(c, h.follows.Followers)
}

// GetFollowing handles GET /users/:userId/following.
func (h *Handler) GetFollowing(c *gin.Context) {
	h.listRelated(c, h.follows.Following)
}

func (h *Handler) listRelated(c *gin.Context, list func(ctx context.Context, userID, viewerID primitive.ObjectID) ([]domain.ProfileView, error)) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	views, err := list(ctx, userID, requester)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldUserID, userID.Hex()).Msg("list follow relations failed")
		response.InternalError(c, "failed to list users")
		return
	}

	response.Success(c, views)
}
