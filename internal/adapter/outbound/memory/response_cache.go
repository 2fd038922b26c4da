package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nanostudio/server/internal/port/outbound"
)

// ResponseCache keeps idempotent responses in process memory.
type ResponseCache struct {
	cache *gocache.Cache
}

// NewResponseCache creates an in-memory response cache.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{cache: gocache.New(time.Hour, 10*time.Minute)}
}

func (c *ResponseCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.cache.Get("resp:" + key)
	if !ok {
		return nil, nil
	}
	return v.([]byte), nil
}

func (c *ResponseCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.cache.Set("resp:"+key, value, ttl)
	return nil
}

// Lock relies on go-cache Add failing for an existing, unexpired item.
func (c *ResponseCache) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return c.cache.Add("lock:"+key, struct{}{}, ttl) == nil, nil
}

func (c *ResponseCache) Unlock(_ context.Context, key string) error {
	c.cache.Delete("lock:" + key)
	return nil
}

var _ outbound.ResponseCachePort = (*ResponseCache)(nil)
