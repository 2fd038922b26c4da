package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nanostudio/server/internal/model"
)

func newTestPoller(vendor *MockVendor, policy RetryPolicy) (*Poller, *fakeClock, *recordingObserver) {
	obs := &recordingObserver{}
	p := NewPoller(vendor, policy, obs, nil)
	clock := newFakeClock()
	p.now = clock.Now
	p.sleep = clock.Sleep
	return p, clock, obs
}

func TestPoller_Wait(t *testing.T) {
	ctx := context.Background()
	policy := RetryPolicy{Interval: 10 * time.Second}

	t.Run("finished submit response is not polled", func(t *testing.T) {
		vendor := new(MockVendor)
		p, clock, _ := newTestPoller(vendor, policy)

		job, err := p.Wait(ctx, testCred, &model.VideoJob{ID: "op", Done: true, ResultURI: "u"}, nil)

		require.NoError(t, err)
		assert.Equal(t, "u", job.ResultURI)
		assert.Empty(t, clock.sleeps)
		vendor.AssertNotCalled(t, "GetVideoJob", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("waits the interval between fetches", func(t *testing.T) {
		vendor := new(MockVendor)
		p, clock, obs := newTestPoller(vendor, policy)

		vendor.On("GetVideoJob", mock.Anything, testCred, mock.Anything).Return(&model.VideoJob{ID: "op"}, nil).Twice()
		vendor.On("GetVideoJob", mock.Anything, testCred, mock.Anything).Return(&model.VideoJob{ID: "op", Done: true, ResultURI: "u"}, nil).Once()

		var attempts []int
		job, err := p.Wait(ctx, testCred, &model.VideoJob{ID: "op"}, func(s JobState, _ *model.VideoJob, attempt int) {
			attempts = append(attempts, attempt)
		})

		require.NoError(t, err)
		assert.Equal(t, "u", job.ResultURI)
		assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second, 10 * time.Second}, clock.sleeps)
		assert.Equal(t, []int{0, 1, 2, 3, 3}, attempts)
		assert.Equal(t, []string{"submitted", "polling", "polling", "polling", "done"}, obs.polls)
		vendor.AssertNumberOfCalls(t, "GetVideoJob", 3)
	})

	t.Run("keeps the job id when the status omits it", func(t *testing.T) {
		vendor := new(MockVendor)
		p, _, _ := newTestPoller(vendor, policy)
		vendor.On("GetVideoJob", mock.Anything, testCred, mock.Anything).Return(&model.VideoJob{Done: true, ResultURI: "u"}, nil)

		job, err := p.Wait(ctx, testCred, &model.VideoJob{ID: "op"}, nil)

		require.NoError(t, err)
		assert.Equal(t, "op", job.ID)
	})

	t.Run("max attempts exhausts", func(t *testing.T) {
		vendor := new(MockVendor)
		p, _, _ := newTestPoller(vendor, RetryPolicy{Interval: time.Second, MaxAttempts: 3})
		vendor.On("GetVideoJob", mock.Anything, testCred, mock.Anything).Return(&model.VideoJob{ID: "op"}, nil)

		_, err := p.Wait(ctx, testCred, &model.VideoJob{ID: "op"}, nil)

		assert.ErrorIs(t, err, ErrJobFailure)
		assert.ErrorIs(t, err, ErrPollExhausted)
		vendor.AssertNumberOfCalls(t, "GetVideoJob", 3)
	})

	t.Run("timeout exhausts", func(t *testing.T) {
		vendor := new(MockVendor)
		p, _, _ := newTestPoller(vendor, RetryPolicy{Interval: 10 * time.Second, Timeout: 30 * time.Second})
		vendor.On("GetVideoJob", mock.Anything, testCred, mock.Anything).Return(&model.VideoJob{ID: "op"}, nil)

		var last JobState
		_, err := p.Wait(ctx, testCred, &model.VideoJob{ID: "op"}, func(s JobState, _ *model.VideoJob, _ int) { last = s })

		assert.ErrorIs(t, err, ErrPollExhausted)
		assert.Equal(t, JobFailed, last)
		vendor.AssertNumberOfCalls(t, "GetVideoJob", 3)
	})

	t.Run("finished without uri fails", func(t *testing.T) {
		vendor := new(MockVendor)
		p, _, _ := newTestPoller(vendor, policy)

		_, err := p.Wait(ctx, testCred, &model.VideoJob{ID: "op", Done: true}, nil)

		assert.ErrorIs(t, err, ErrJobFailure)
		assert.ErrorIs(t, err, ErrJobMissingURI)
	})

	t.Run("status fetch error is not retried", func(t *testing.T) {
		vendor := new(MockVendor)
		p, _, _ := newTestPoller(vendor, policy)
		vendor.On("GetVideoJob", mock.Anything, testCred, mock.Anything).Return(nil, errors.New("500"))

		_, err := p.Wait(ctx, testCred, &model.VideoJob{ID: "op"}, nil)

		assert.ErrorIs(t, err, ErrRemoteCallFailure)
		vendor.AssertNumberOfCalls(t, "GetVideoJob", 1)
	})

	t.Run("cancelled context stops the wait", func(t *testing.T) {
		vendor := new(MockVendor)
		p, _, _ := newTestPoller(vendor, policy)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := p.Wait(cctx, testCred, &model.VideoJob{ID: "op"}, nil)

		assert.ErrorIs(t, err, ErrJobFailure)
		assert.ErrorIs(t, err, context.Canceled)
		vendor.AssertNotCalled(t, "GetVideoJob", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
