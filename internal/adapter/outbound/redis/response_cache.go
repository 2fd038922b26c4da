package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nanostudio/server/internal/port/outbound"
)

const (
	responseKeyPrefix = "nanostudio:idempotency:"
	lockSuffix        = ":lock"
)

// ResponseCache keeps idempotent responses in Redis.
type ResponseCache struct {
	client redis.UniversalClient
}

// NewResponseCache creates a Redis response cache.
func NewResponseCache(client redis.UniversalClient) *ResponseCache {
	return &ResponseCache{client: client}
}

func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (c *ResponseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, responseKeyPrefix+key, value, ttl).Err()
}

func (c *ResponseCache) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, responseKeyPrefix+key+lockSuffix, "1", ttl).Result()
}

func (c *ResponseCache) Unlock(ctx context.Context, key string) error {
	return c.client.Del(ctx, responseKeyPrefix+key+lockSuffix).Err()
}

var _ outbound.ResponseCachePort = (*ResponseCache)(nil)
