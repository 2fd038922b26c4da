package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nanostudio/server/internal/port/outbound"
)

const rateLimitKeyPrefix = "nanostudio:ratelimit:"

// slidingWindow trims the window, then admits ARGV[4] requests if they fit.
// KEYS[1]=zset, ARGV[1]=now ns, ARGV[2]=window start ns, ARGV[3]=limit, ARGV[4]=n,
// ARGV[5]=window ms, ARGV[6]=member prefix.
var slidingWindow = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "0", ARGV[2])
local count = redis.call("ZCARD", KEYS[1])
local n = tonumber(ARGV[4])
if count + n > tonumber(ARGV[3]) then
  return 0
end
for i = 1, n do
  redis.call("ZADD", KEYS[1], ARGV[1], ARGV[6] .. ":" .. i)
end
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

// RateLimiter is a sliding-window limiter shared by every replica.
type RateLimiter struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRateLimiter creates a Redis rate limiter.
func NewRateLimiter(client redis.UniversalClient) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return r.AllowN(ctx, key, 1, limit, window)
}

func (r *RateLimiter) AllowN(ctx context.Context, key string, n int, limit int, window time.Duration) (bool, error) {
	now := r.now().UnixNano()
	res, err := slidingWindow.Run(ctx, r.client, []string{rateLimitKeyPrefix + key},
		now,
		now-window.Nanoseconds(),
		limit,
		n,
		window.Milliseconds(),
		uuid.NewString(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return res == 1, nil
}

func (r *RateLimiter) GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	fullKey := rateLimitKeyPrefix + key
	windowStart := r.now().UnixNano() - window.Nanoseconds()

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return max(limit-int(countCmd.Val()), 0), nil
}

var _ outbound.RateLimiterPort = (*RateLimiter)(nil)
