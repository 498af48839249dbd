package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"github.com/arijitchhatui/swiftsend-service/internal/cache"
	"github.com/arijitchhatui/swiftsend-service/internal/domain"
	"github.com/arijitchhatui/swiftsend-service/internal/presence"
	"github.com/arijitchhatui/swiftsend-service/internal/repository"
	"github.com/arijitchhatui/swiftsend-service/internal/search"
	pkglog "github.com/arijitchhatui/swiftsend-service/pkg/log"
)

const searchLimit = 20

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeUsername lowercases and strips whitespace and
// non-alphanumeric characters.
func NormalizeUsername(s string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "")
}

// profileService implements ProfileService.
type profileService struct {
	profiles repository.ProfileRepository
	follows  repository.FollowRepository
	cache    cache.ProfileCache
	index    search.ProfileIndex
	oracle   presence.Oracle
	sf       singleflight.Group
}

// NewProfileService creates a new ProfileService instance.
func NewProfileService(
	profiles repository.ProfileRepository,
	follows repository.FollowRepository,
	profileCache cache.ProfileCache,
	index search.ProfileIndex,
	oracle presence.Oracle,
) ProfileService {
	return &profileService{
		profiles: profiles,
		follows:  follows,
		cache:    profileCache,
		index:    index,
		oracle:   oracle,
	}
}

func (s *profileService) Find(ctx context.Context, viewerID primitive.ObjectID, usernameOrID string) (*domain.ProfileView, error) {
	var (
		profile *domain.UserProfile
		err     error
	)
	if userID, idErr := primitive.ObjectIDFromHex(usernameOrID); idErr == nil {
		profile, err = s.getByUserID(ctx, userID)
	} else {
		profile, err = s.profiles.GetByUsername(ctx, NormalizeUsername(usernameOrID))
	}
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return s.annotate(ctx, viewerID, profile), nil
}

// getByUserID reads through the cache; singleflight collapses
// concurrent misses for the same user.
func (s *profileService) getByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	l := pkglog.Ctx(ctx)
	key := userID.Hex()

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Str(pkglog.FieldUserID, key).Msg("profile cache get failed, falling back to db")
	}

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		profile, err := s.profiles.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, profile); err != nil {
			l.Warn().Err(err).Str(pkglog.FieldUserID, key).Msg("profile cache set failed")
		}
		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.UserProfile), nil
}

// annotate attaches viewer-relative follow state and presence. All
// lookups are best-effort; a failed annotation defaults to false.
func (s *profileService) annotate(ctx context.Context, viewerID primitive.ObjectID, profile *domain.UserProfile) *domain.ProfileView {
	l := pkglog.Ctx(ctx)
	view := &domain.ProfileView{UserProfile: *profile, LastSeen: time.Now()}

	if viewerID != profile.UserID {
		followedByMe, err := s.follows.Exists(ctx, viewerID, profile.UserID)
		if err != nil {
			l.Warn().Err(err).Str(pkglog.FieldUserID, profile.UserID.Hex()).Msg("failed to check follow edge")
		}
		view.IsFollowedByMe = followedByMe

		following, err := s.follows.Exists(ctx, profile.UserID, viewerID)
		if err != nil {
			l.Warn().Err(err).Str(pkglog.FieldUserID, profile.UserID.Hex()).Msg("failed to check reverse follow edge")
		}
		view.IsFollowing = following
	}

	online, err := s.oracle.IsOnline(ctx, profile.UserID.Hex())
	if err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, profile.UserID.Hex()).Msg("presence lookup failed")
	}
	view.IsOnline = online

	return view
}

func (s *profileService) Update(ctx context.Context, userID primitive.ObjectID, patch domain.ProfilePatch) (*domain.UserProfile, error) {
	l := pkglog.Ctx(ctx)

	fields := map[string]interface{}{}
	if patch.Username != nil {
		username := NormalizeUsername(*patch.Username)
		taken, err := s.profiles.UsernameTaken(ctx, username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		fields["username"] = username
	}
	if patch.FullName != nil {
		fields["fullName"] = *patch.FullName
	}
	if patch.Bio != nil {
		fields["bio"] = *patch.Bio
	}
	if patch.AvatarURL != nil {
		fields["avatarURL"] = *patch.AvatarURL
	}
	if patch.BannerURL != nil {
		fields["bannerURL"] = *patch.BannerURL
	}
	if patch.WebsiteURL != nil {
		fields["websiteURL"] = *patch.WebsiteURL
	}
	if patch.Pronouns != nil {
		fields["pronouns"] = *patch.Pronouns
	}

	updated, err := s.profiles.UpdateFields(ctx, userID, fields)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProfileNotFound):
			return nil, ErrProfileNotFound
		case errors.Is(err, repository.ErrUsernameExists):
			// The unique index caught a username race the precondition
			// check missed.
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, userID.Hex()); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID.Hex()).Msg("profile cache invalidate failed")
	}
	if err := s.index.Index(ctx, updated); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID.Hex()).Msg("profile reindex failed")
	}

	return updated, nil
}

func (s *profileService) Search(ctx context.Context, query string) ([]domain.ProfileView, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	profiles, err := s.index.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}

	l := pkglog.Ctx(ctx)
	views := make([]domain.ProfileView, 0, len(profiles))
	for i := range profiles {
		online, err := s.oracle.IsOnline(ctx, profiles[i].UserID.Hex())
		if err != nil {
			l.Warn().Err(err).Str(pkglog.FieldUserID, profiles[i].UserID.Hex()).Msg("presence lookup failed")
		}
		views = append(views, domain.ProfileView{
			UserProfile: profiles[i],
			IsOnline:    online,
			LastSeen:    time.Now(),
		})
	}
	return views, nil
}

func (s *profileService) AdjustPostCount(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	if err := s.profiles.AdjustPostCount(ctx, userID, delta); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, userID.Hex()); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID.Hex()).Msg("profile cache invalidate failed")
	}
	return nil
}

var _ ProfileService = (*profileService)(nil)
