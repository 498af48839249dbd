package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arijitchhatui/swiftsend-service/internal/config"
)

// Redis key patterns:
// presence:online              SET<user_id>   - users with an active connection
// presence:user:{user_id}      STRING<"1">    - TTL heartbeat key per user
//
// IsOnline consults the heartbeat key, so a crashed connection stops
// reporting online once its TTL lapses even if the set entry lingers.

const onlineSetKey = "presence:online"

func userKey(userID string) string {
	return fmt.Sprintf("presence:user:%s", userID)
}

// Event is published on the pub/sub channel on every presence change.
type Event struct {
	UserID string    `json:"user_id"`
	Online bool      `json:"online"`
	At     time.Time `json:"at"`
}

// redisTracker implements Tracker using Redis.
type redisTracker struct {
	client  *redis.Client
	ttl     time.Duration
	channel string
}

// NewRedisTracker creates a new Redis-backed presence tracker.
func NewRedisTracker(client *redis.Client, cfg config.PresenceConfig) Tracker {
	return &redisTracker{
		client:  client,
		ttl:     cfg.TTL,
		channel: cfg.PubSubChannel,
	}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (t *redisTracker) SetOnline(ctx context.Context, userID string) error {
	pipe := t.client.TxPipeline()
	pipe.SAdd(ctx, onlineSetKey, userID)
	pipe.Set(ctx, userKey(userID), "1", t.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	t.publish(ctx, userID, true)
	return nil
}

func (t *redisTracker) Refresh(ctx context.Context, userID string) error {
	return t.client.Expire(ctx, userKey(userID), t.ttl).Err()
}

func (t *redisTracker) SetOffline(ctx context.Context, userID string) error {
	pipe := t.client.TxPipeline()
	pipe.SRem(ctx, onlineSetKey, userID)
	pipe.Del(ctx, userKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	t.publish(ctx, userID, false)
	return nil
}

func (t *redisTracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := t.client.Exists(ctx, userKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// publish is best-effort; presence state itself is the source of truth.
func (t *redisTracker) publish(ctx context.Context, userID string, online bool) {
	if t.channel == "" {
		return
	}
	payload, err := json.Marshal(Event{UserID: userID, Online: online, At: time.Now()})
	if err != nil {
		return
	}
	t.client.Publish(ctx, t.channel, payload)
}

func (t *redisTracker) Close() error {
	return t.client.Close()
}

var _ Tracker = (*redisTracker)(nil)
