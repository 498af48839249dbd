package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
	"github.com/arijitchhatui/swiftsend-service/internal/presence"
	"github.com/arijitchhatui/swiftsend-service/internal/repository"
	pkglog "github.com/arijitchhatui/swiftsend-service/pkg/log"
)

// followService implements FollowService.
//
// Counter updates are separate writes from edge mutations; there is no
// cross-document transaction, so counters can drift under partial
// failure. The reconciler periodically recomputes them from the edges.
type followService struct {
	follows  repository.FollowRepository
	profiles repository.ProfileRepository
	oracle   presence.Oracle
	now      func() time.Time
}

// NewFollowService creates a new FollowService instance.
func NewFollowService(
	follows repository.FollowRepository,
	profiles repository.ProfileRepository,
	oracle presence.Oracle,
) FollowService {
	return &followService{
		follows:  follows,
		profiles: profiles,
		oracle:   oracle,
		now:      time.Now,
	}
}

// Follow creates the edge and bumps both denormalized counters.
// Following an already-followed user is a no-op.
func (s *followService) Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	l := pkglog.Ctx(ctx)

	if followerID == targetID {
		return ErrSelfFollow
	}

	exists, err := s.follows.Exists(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	edge := &domain.FollowEdge{
		FollowingUserID: followerID,
		FollowedUserID:  targetID,
		CreatedAt:       s.now(),
	}
	if err := s.follows.Create(ctx, edge); err != nil {
		l.Error().Err(err).
			Str("follower_id", followerID.Hex()).
			Str("target_id", targetID.Hex()).
			Msg("failed to create follow edge")
		return err
	}

	if err := s.profiles.AdjustFollowerCount(ctx, targetID, 1); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, targetID.Hex()).Msg("failed to increment follower count")
	}
	if err := s.profiles.AdjustFollowingCount(ctx, followerID, 1); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, followerID.Hex()).Msg("failed to increment following count")
	}

	return nil
}

// Unfollow removes the edge and decrements counters only if an edge
// was actually removed. After the delete it re-queries the pair: if an
// edge still shows up (a duplicate survived a race), the counter
// update is short-circuited.
func (s *followService) Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) (UnfollowOutcome, error) {
	l := pkglog.Ctx(ctx)

	removed, err := s.follows.Delete(ctx, followerID, targetID)
	if err != nil {
		return UnfollowDone, err
	}

	stillFollowed, err := s.follows.Exists(ctx, followerID, targetID)
	if err != nil {
		return UnfollowDone, err
	}
	if stillFollowed {
		return UnfollowStillFollowed, nil
	}

	if !removed {
		return UnfollowDone, ErrNothingToUnfollow
	}

	if err := s.profiles.AdjustFollowerCount(ctx, targetID, -1); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, targetID.Hex()).Msg("failed to decrement follower count")
	}
	if err := s.profiles.AdjustFollowingCount(ctx, followerID, -1); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, followerID.Hex()).Msg("failed to decrement following count")
	}

	return UnfollowDone, nil
}

// Followers lists users following userID.
func (s *followService) Followers(ctx context.Context, userID, viewerID primitive.ObjectID) ([]domain.ProfileView, error) {
	profiles, err := s.follows.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.annotateList(ctx, viewerID, profiles)
}

// Following lists users userID follows.
func (s *followService) Following(ctx context.Context, userID, viewerID primitive.ObjectID) ([]domain.ProfileView, error) {
	profiles, err := s.follows.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.annotateList(ctx, viewerID, profiles)
}

// annotateList attaches the viewer's follow relation in both
// directions (mutual follow means both are true) plus presence.
// Annotation failures default to false.
func (s *followService) annotateList(ctx context.Context, viewerID primitive.ObjectID, profiles []domain.UserProfile) ([]domain.ProfileView, error) {
	l := pkglog.Ctx(ctx)

	views := make([]domain.ProfileView, 0, len(profiles))
	for i := range profiles {
		view := domain.ProfileView{UserProfile: profiles[i], LastSeen: s.now()}

		followedByMe, err := s.follows.Exists(ctx, viewerID, profiles[i].UserID)
		if err != nil {
			l.Warn().Err(err).Str(pkglog.FieldUserID, profiles[i].UserID.Hex()).Msg("failed to check follow edge")
		}
		view.IsFollowedByMe = followedByMe

		following, err := s.follows.Exists(ctx, profiles[i].UserID, viewerID)
		if err != nil {
			l.Warn().Err(err).Str(pkglog.FieldUserID, profiles[i].UserID.Hex()).Msg("failed to check reverse follow edge")
		}
		view.IsFollowing = following

		online, err := s.oracle.IsOnline(ctx, profiles[i].UserID.Hex())
		if err != nil {
			l.Warn().Err(err).Str(pkglog.FieldUserID, profiles[i].UserID.Hex()).Msg("presence lookup failed")
		}
		view.IsOnline = online

		views = append(views, view)
	}
	return views, nil
}

var _ FollowService = (*followService)(nil)
