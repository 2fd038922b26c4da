package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		l := NewRateLimiter(time.Minute)
		for i := 0; i < 3; i++ {
			ok, err := l.Allow(ctx, "ip:1.2.3.4", 3, time.Hour)
			require.NoError(t, err)
			assert.True(t, ok, "request %d", i)
		}

		ok, err := l.Allow(ctx, "ip:1.2.3.4", 3, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)

		remaining, err := l.GetRemaining(ctx, "ip:1.2.3.4", 3, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 0, remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := NewRateLimiter(time.Minute)
		ok, _ := l.Allow(ctx, "a", 1, time.Hour)
		assert.True(t, ok)
		ok, _ = l.Allow(ctx, "a", 1, time.Hour)
		assert.False(t, ok)
		ok, _ = l.Allow(ctx, "b", 1, time.Hour)
		assert.True(t, ok)
	})

	t.Run("AllowN larger than limit is rejected", func(t *testing.T) {
		l := NewRateLimiter(time.Minute)
		ok, err := l.AllowN(ctx, "k", 5, 3, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)

		remaining, _ := l.GetRemaining(ctx, "k", 3, time.Hour)
		assert.Equal(t, 3, remaining)
	})
}

func TestResponseCache(t *testing.T) {
	ctx := context.Background()
	c := NewResponseCache()

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "k", []byte("body"), time.Minute))
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), got)

	ok, err := c.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = c.Lock(ctx, "k", time.Minute)
	assert.False(t, ok, "second lock must fail")

	require.NoError(t, c.Unlock(ctx, "k"))
	ok, _ = c.Lock(ctx, "k", time.Minute)
	assert.True(t, ok)
}
