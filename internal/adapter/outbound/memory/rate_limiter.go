package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/nanostudio/server/internal/port/outbound"
)

// RateLimiter is a per-process token bucket limiter keyed by caller.
// A key refills at limit/window and can burst up to limit.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *gocache.Cache
}

// NewRateLimiter creates a limiter that forgets keys idle for longer than idle.
func NewRateLimiter(idle time.Duration) *RateLimiter {
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	return &RateLimiter{limiters: gocache.New(idle, idle)}
}

func (r *RateLimiter) limiter(key string, limit int, window time.Duration) *rate.Limiter {
	k := fmt.Sprintf("%s|%d|%s", key, limit, window)

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.limiters.Get(k); ok {
		r.limiters.SetDefault(k, v)
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(rate.Every(window/time.Duration(max(limit, 1))), limit)
	r.limiters.SetDefault(k, l)
	return l
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return r.AllowN(ctx, key, 1, limit, window)
}

func (r *RateLimiter) AllowN(_ context.Context, key string, n int, limit int, window time.Duration) (bool, error) {
	return r.limiter(key, limit, window).AllowN(time.Now(), n), nil
}

func (r *RateLimiter) GetRemaining(_ context.Context, key string, limit int, window time.Duration) (int, error) {
	tokens := int(r.limiter(key, limit, window).Tokens())
	return min(max(tokens, 0), limit), nil
}

var _ outbound.RateLimiterPort = (*RateLimiter)(nil)
