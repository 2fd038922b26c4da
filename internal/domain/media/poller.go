package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/outbound"
)

// JobState is the poller's view of a video job.
type JobState string

const (
	JobSubmitted JobState = "submitted"
	JobPolling   JobState = "polling"
	JobDone      JobState = "done"
	JobFailed    JobState = "failed"
)

// RetryPolicy bounds the status loop. Zero MaxAttempts or Timeout means
// that bound is not applied.
type RetryPolicy struct {
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

// DefaultRetryPolicy polls every 10 seconds for up to 20 minutes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Interval: 10 * time.Second,
		Timeout:  20 * time.Minute,
	}
}

// Transition is called on every state change with the latest job status and
// the number of status fetches so far.
type Transition func(state JobState, job *model.VideoJob, attempt int)

// Poller drives a submitted video job to a terminal state.
type Poller struct {
	vendor   outbound.MediaVendorPort
	policy   RetryPolicy
	observer Observer
	logger   *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a new poller.
func NewPoller(vendor outbound.MediaVendorPort, policy RetryPolicy, observer Observer, logger *zap.Logger) *Poller {
	if policy.Interval <= 0 {
		policy.Interval = DefaultRetryPolicy().Interval
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		vendor:   vendor,
		policy:   policy,
		observer: observer,
		logger:   logger.Named("poller"),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Wait polls job until it completes, fails or exhausts the retry policy.
// The status carried by the submit response is checked before the first wait.
// A finished job is only returned when it carries a result URI.
func (p *Poller) Wait(ctx context.Context, cred model.Credential, job *model.VideoJob, onTransition Transition) (*model.VideoJob, error) {
	notify := func(state JobState, j *model.VideoJob, attempt int) {
		p.observer.RecordPollAttempt(string(state))
		if onTransition != nil {
			onTransition(state, j, attempt)
		}
	}

	notify(JobSubmitted, job, 0)

	var deadline time.Time
	if p.policy.Timeout > 0 {
		deadline = p.now().Add(p.policy.Timeout)
	}

	attempt := 0
	for {
		if job.Done {
			return p.finish(job, attempt, notify)
		}

		if p.policy.MaxAttempts > 0 && attempt >= p.policy.MaxAttempts {
			notify(JobFailed, job, attempt)
			return nil, newError(KindJobFailure, opPollVideo,
				fmt.Errorf("%w after %d attempts", ErrPollExhausted, attempt))
		}
		if !deadline.IsZero() && !p.now().Before(deadline) {
			notify(JobFailed, job, attempt)
			return nil, newError(KindJobFailure, opPollVideo,
				fmt.Errorf("%w after %s", ErrPollExhausted, p.policy.Timeout))
		}

		if err := p.sleep(ctx, p.policy.Interval); err != nil {
			notify(JobFailed, job, attempt)
			return nil, newError(KindJobFailure, opPollVideo, err)
		}

		attempt++
		next, err := p.vendor.GetVideoJob(ctx, cred, job)
		if err != nil {
			p.logger.Warn("video status fetch failed",
				zap.String("job_id", job.ID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			notify(JobFailed, job, attempt)
			return nil, newError(KindRemoteCallFailure, opPollVideo, err)
		}
		if next == nil {
			notify(JobFailed, job, attempt)
			return nil, newError(KindRemoteCallFailure, opPollVideo, errors.New("empty status response"))
		}
		if next.ID == "" {
			next.ID = job.ID
		}
		job = next

		p.logger.Debug("video job polled",
			zap.String("job_id", job.ID),
			zap.Int("attempt", attempt),
			zap.Bool("done", job.Done))
		notify(JobPolling, job, attempt)
	}
}

func (p *Poller) finish(job *model.VideoJob, attempt int, notify Transition) (*model.VideoJob, error) {
	if job.Error != "" {
		notify(JobFailed, job, attempt)
		return nil, newError(KindJobFailure, opPollVideo, errors.New(job.Error))
	}
	if job.ResultURI == "" {
		notify(JobFailed, job, attempt)
		return nil, newError(KindJobFailure, opPollVideo, ErrJobMissingURI)
	}
	notify(JobDone, job, attempt)
	return job, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
