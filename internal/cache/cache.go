package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LatestJobTTL bounds how long a workspace's latest-report pointer survives without a newer run.
const LatestJobTTL = 30 * 24 * time.Hour

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
type Cache interface {
	Ping(ctx context.Context) error
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
	SetLatestJob(ctx context.Context, workspaceID string, jobID uuid.UUID) error
	GetLatestJob(ctx context.Context, workspaceID string) (uuid.UUID, bool, error)
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// IncrWithExpiry increments key and refreshes its expiry in one transaction.
func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// SetLatestJob records jobID as the workspace's most recent completed analysis.
func (c *RedisCache) SetLatestJob(ctx context.Context, workspaceID string, jobID uuid.UUID) error {
	return c.client.Set(ctx, LatestReportKey(workspaceID), jobID.String(), LatestJobTTL).Err()
}

func (c *RedisCache) GetLatestJob(ctx context.Context, workspaceID string) (uuid.UUID, bool, error) {
	val, err := c.client.Get(ctx, LatestReportKey(workspaceID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("parse latest job id %q: %w", val, err)
	}
	return id, true, nil
}

var _ Cache = (*RedisCache)(nil)
