package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// ProfileCache caches profile documents by user id.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Set(ctx context.Context, profile *domain.UserProfile) error
	Invalidate(ctx context.Context, userID string) error
}

// RedisProfileCache implements ProfileCache on Redis.
type RedisProfileCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisProfileCache creates a new Redis-backed profile cache.
func NewRedisProfileCache(client *redis.Client, prefix string, ttl time.Duration) *RedisProfileCache {
	return &RedisProfileCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisProfileCache) key(userID string) string {
	return fmt.Sprintf("%s:id:%s", c.prefix, userID)
}

func (c *RedisProfileCache) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached profile: %w", err)
	}
	return &profile, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, profile *domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return c.client.Set(ctx, c.key(profile.UserID.Hex()), data, c.ttl).Err()
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}

var _ ProfileCache = (*RedisProfileCache)(nil)
