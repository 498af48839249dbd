package service

import (
	"bytes"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arijitchhatui/swiftsend-service/internal/cache"
	"github.com/arijitchhatui/swiftsend-service/internal/domain"
	"github.com/arijitchhatui/swiftsend-service/internal/repository"
)

// fakeProfileRepo is an in-memory ProfileRepository.
type fakeProfileRepo struct {
	profiles map[primitive.ObjectID]*domain.UserProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[primitive.ObjectID]*domain.UserProfile{}}
}

func (r *fakeProfileRepo) add(p *domain.UserProfile) *domain.UserProfile {
	if p.UserID.IsZero() {
		p.UserID = primitive.NewObjectID()
	}
	p.ID = primitive.NewObjectID()
	r.profiles[p.UserID] = p
	return p
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	if p, ok := r.profiles[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrProfileNotFound
}

func (r *fakeProfileRepo) GetByUsername(ctx context.Context, username string) (*domain.UserProfile, error) {
	for _, p := range r.profiles {
		if p.Username == username {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (r *fakeProfileRepo) UsernameTaken(ctx context.Context, username string, excludeUserID primitive.ObjectID) (bool, error) {
	for _, p := range r.profiles {
		if p.Username == username && p.UserID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProfileRepo) UpdateFields(ctx context.Context, userID primitive.ObjectID, fields map[string]interface{}) (*domain.UserProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "username":
			p.Username = s
		case "fullName":
			p.FullName = s
		case "bio":
			p.Bio = s
		case "avatarURL":
			p.AvatarURL = s
		case "bannerURL":
			p.BannerURL = s
		case "websiteURL":
			p.WebsiteURL = s
		case "pronouns":
			p.Pronouns = s
		}
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProfileRepo) AdjustPostCount(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	if p, ok := r.profiles[userID]; ok {
		p.PostCount += delta
	}
	return nil
}

func (r *fakeProfileRepo) AdjustFollowerCount(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	if p, ok := r.profiles[userID]; ok {
		p.FollowerCount += delta
	}
	return nil
}

func (r *fakeProfileRepo) AdjustFollowingCount(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	if p, ok := r.profiles[userID]; ok {
		p.FollowingCount += delta
	}
	return nil
}

func (r *fakeProfileRepo) SetFollowCounts(ctx context.Context, userID primitive.ObjectID, followers, following int64) error {
	if p, ok := r.profiles[userID]; ok {
		p.FollowerCount = followers
		p.FollowingCount = following
	}
	return nil
}

func (r *fakeProfileRepo) ListUserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

// fakeFollowRepo is an in-memory FollowRepository. It joins against a
// fakeProfileRepo for the listing aggregations.
type fakeFollowRepo struct {
	edges    []domain.FollowEdge
	profiles *fakeProfileRepo
}

func newFakeFollowRepo(profiles *fakeProfileRepo) *fakeFollowRepo {
	return &fakeFollowRepo{profiles: profiles}
}

func (r *fakeFollowRepo) Exists(ctx context.Context, followingUserID, followedUserID primitive.ObjectID) (bool, error) {
	for _, e := range r.edges {
		if e.FollowingUserID == followingUserID && e.FollowedUserID == followedUserID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFollowRepo) Create(ctx context.Context, edge *domain.FollowEdge) error {
	edge.ID = primitive.NewObjectID()
	r.edges = append(r.edges, *edge)
	return nil
}

func (r *fakeFollowRepo) Delete(ctx context.Context, followingUserID, followedUserID primitive.ObjectID) (bool, error) {
	for i, e := range r.edges {
		if e.FollowingUserID == followingUserID && e.FollowedUserID == followedUserID {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFollowRepo) ListFollowers(ctx context.Context, userID primitive.ObjectID) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	for _, e := range r.edges {
		if e.FollowedUserID == userID {
			if p, ok := r.profiles.profiles[e.FollowingUserID]; ok {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

func (r *fakeFollowRepo) ListFollowing(ctx context.Context, userID primitive.ObjectID) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	for _, e := range r.edges {
		if e.FollowingUserID == userID {
			if p, ok := r.profiles.profiles[e.FollowedUserID]; ok {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

func (r *fakeFollowRepo) CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, e := range r.edges {
		if e.FollowedUserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeFollowRepo) CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, e := range r.edges {
		if e.FollowingUserID == userID {
			n++
		}
	}
	return n, nil
}

// fakeChannelRepo is an in-memory ChannelRepository. touchErr, when
// set, makes Touch fail.
type fakeChannelRepo struct {
	channels []*domain.Channel
	touchErr error
}

func (r *fakeChannelRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Channel, error) {
	for _, ch := range r.channels {
		if ch.ID == id {
			copied := *ch
			return &copied, nil
		}
	}
	return nil, repository.ErrChannelNotFound
}

func (r *fakeChannelRepo) GetByParticipants(ctx context.Context, a, b primitive.ObjectID) (*domain.Channel, error) {
	for _, ch := range r.channels {
		if a == b {
			// A self-channel is the exact [a, a] pair, not any channel
			// containing a.
			if len(ch.Participants) == 2 && ch.Participants[0] == a && ch.Participants[1] == a {
				copied := *ch
				return &copied, nil
			}
			continue
		}
		if ch.HasParticipant(a) && ch.HasParticipant(b) {
			copied := *ch
			return &copied, nil
		}
	}
	return nil, repository.ErrChannelNotFound
}

func (r *fakeChannelRepo) Create(ctx context.Context, channel *domain.Channel) error {
	channel.ID = primitive.NewObjectID()
	copied := *channel
	r.channels = append(r.channels, &copied)
	return nil
}

func (r *fakeChannelRepo) ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]domain.Channel, error) {
	var out []domain.Channel
	for _, ch := range r.channels {
		if ch.HasParticipant(userID) {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (r *fakeChannelRepo) Touch(ctx context.Context, id primitive.ObjectID) error {
	return r.touchErr
}

func (r *fakeChannelRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i, ch := range r.channels {
		if ch.ID == id {
			r.channels = append(r.channels[:i], r.channels[i+1:]...)
			return nil
		}
	}
	return repository.ErrChannelNotFound
}

// fakeMessageRepo is an in-memory MessageRepository keeping insertion
// order.
type fakeMessageRepo struct {
	messages []*domain.Message
}

func (r *fakeMessageRepo) find(id primitive.ObjectID) *domain.Message {
	for _, m := range r.messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Message, error) {
	if m := r.find(id); m != nil {
		copied := *m
		return &copied, nil
	}
	return nil, repository.ErrMessageNotFound
}

func (r *fakeMessageRepo) Insert(ctx context.Context, message *domain.Message) error {
	message.ID = primitive.NewObjectID()
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeMessageRepo) List(ctx context.Context, channelID, viewerID primitive.ObjectID, cursor primitive.ObjectID, limit int) ([]domain.Message, bool, error) {
	var out []domain.Message
	hasMore := false
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if m.ChannelID != channelID || m.HiddenBy(viewerID) {
			continue
		}
		if !cursor.IsZero() && bytes.Compare(m.ID[:], cursor[:]) >= 0 {
			continue
		}
		if len(out) == limit {
			hasMore = true
			break
		}
		out = append(out, *m)
	}
	return out, hasMore, nil
}

func (r *fakeMessageRepo) ListMedia(ctx context.Context, channelID, viewerID primitive.ObjectID) ([]domain.Message, error) {
	var out []domain.Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if m.ChannelID != channelID || m.Deleted || m.HiddenBy(viewerID) {
			continue
		}
		if m.ImageURL == nil || *m.ImageURL == "" {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMessageRepo) Latest(ctx context.Context, channelID primitive.ObjectID) (*domain.Message, error) {
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].ChannelID == channelID {
			copied := *r.messages[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrMessageNotFound
}

func (r *fakeMessageRepo) SetText(ctx context.Context, id primitive.ObjectID, text string, editedAt time.Time) error {
	m := r.find(id)
	if m == nil {
		return repository.ErrMessageNotFound
	}
	m.Message = &text
	m.Edited = true
	m.EditedAt = &editedAt
	return nil
}

func (r *fakeMessageRepo) HideFor(ctx context.Context, id, userID primitive.ObjectID) error {
	m := r.find(id)
	if m == nil {
		return repository.ErrMessageNotFound
	}
	if !m.HiddenBy(userID) {
		m.HiddenFor = append(m.HiddenFor, userID)
	}
	return nil
}

func (r *fakeMessageRepo) Tombstone(ctx context.Context, id primitive.ObjectID) error {
	m := r.find(id)
	if m == nil {
		return repository.ErrMessageNotFound
	}
	now := time.Now()
	m.Deleted = true
	m.DeletedAt = &now
	m.Message = nil
	m.ImageURL = nil
	m.BlurredImageURL = nil
	return nil
}

func (r *fakeMessageRepo) MarkDelivered(ctx context.Context, id primitive.ObjectID) error {
	m := r.find(id)
	if m == nil {
		return repository.ErrMessageNotFound
	}
	m.Delivered = true
	return nil
}

func (r *fakeMessageRepo) MarkSeen(ctx context.Context, id primitive.ObjectID) error {
	m := r.find(id)
	if m == nil {
		return repository.ErrMessageNotFound
	}
	m.Seen = true
	m.Delivered = true
	return nil
}

func (r *fakeMessageRepo) DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) error {
	var kept []*domain.Message
	for _, m := range r.messages {
		if m.ChannelID != channelID {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

// fakeOracle is an in-memory presence oracle.
type fakeOracle struct {
	online map[string]bool
}

func (o *fakeOracle) IsOnline(ctx context.Context, userID string) (bool, error) {
	return o.online[userID], nil
}

// fakeProfileCache is an in-memory ProfileCache. invalidateErr, when
// set, makes Invalidate fail.
type fakeProfileCache struct {
	entries       map[string]*domain.UserProfile
	invalidateErr error
}

func newFakeProfileCache() *fakeProfileCache {
	return &fakeProfileCache{entries: map[string]*domain.UserProfile{}}
}

func (c *fakeProfileCache) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if p, ok := c.entries[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *fakeProfileCache) Set(ctx context.Context, profile *domain.UserProfile) error {
	copied := *profile
	c.entries[profile.UserID.Hex()] = &copied
	return nil
}

func (c *fakeProfileCache) Invalidate(ctx context.Context, userID string) error {
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	delete(c.entries, userID)
	return nil
}

// fakeProfileIndex records indexed profiles and serves canned search
// results.
type fakeProfileIndex struct {
	indexed []domain.UserProfile
	results []domain.UserProfile
}

func (i *fakeProfileIndex) Index(ctx context.Context, profile *domain.UserProfile) error {
	i.indexed = append(i.indexed, *profile)
	return nil
}

func (i *fakeProfileIndex) Search(ctx context.Context, query string, limit int) ([]domain.UserProfile, error) {
	return i.results, nil
}
