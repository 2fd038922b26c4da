package requestctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))

	t.Run("empty id leaves ctx untouched", func(t *testing.T) {
		base := context.Background()
		assert.Equal(t, base, WithRequestID(base, ""))
	})
}

func TestDetach(t *testing.T) {
	parent, cancel := context.WithTimeout(WithRequestID(context.Background(), "req-2"), time.Millisecond)
	cancel()

	detached := Detach(parent)
	assert.Equal(t, "req-2", RequestID(detached))
	assert.NoError(t, detached.Err())
	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline)
}
