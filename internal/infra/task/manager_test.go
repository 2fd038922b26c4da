package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(maxConcurrent int) *Manager {
	return NewManager(NewMemoryRepository(time.Hour), nil, &Config{
		MaxConcurrent: maxConcurrent,
		TaskTimeout:   time.Minute,
	})
}

func waitForStatus(t *testing.T, m *Manager, id uuid.UUID, want Status) *Task {
	t.Helper()
	var got *Task
	require.Eventually(t, func() bool {
		task, err := m.Get(context.Background(), id)
		if err != nil {
			return false
		}
		got = task
		return task.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestManager_Submit(t *testing.T) {
	t.Run("runs executor to completion", func(t *testing.T) {
		m := newTestManager(2)
		defer m.Stop()

		m.RegisterExecutor("echo", func(ctx context.Context, task *Task, onProgress func(int, map[string]any)) error {
			onProgress(50, map[string]any{"payload": task.Payload})
			return nil
		})

		task, err := m.Submit(context.Background(), "session-1", &SubmitRequest{Type: "echo", Payload: "hello"})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, task.Status)
		assert.Equal(t, "session-1", task.OwnerID)

		done := waitForStatus(t, m, task.ID, StatusCompleted)
		assert.Equal(t, 100, done.Progress)
		assert.Equal(t, "hello", done.Output["payload"])
		assert.NotNil(t, done.CompletedAt)
	})

	t.Run("uses caller supplied id", func(t *testing.T) {
		m := newTestManager(1)
		defer m.Stop()
		m.RegisterExecutor("noop", func(context.Context, *Task, func(int, map[string]any)) error { return nil })

		id := uuid.New()
		task, err := m.Submit(context.Background(), "s", &SubmitRequest{ID: id, Type: "noop"})
		require.NoError(t, err)
		assert.Equal(t, id, task.ID)
	})

	t.Run("records executor failure", func(t *testing.T) {
		m := newTestManager(1)
		defer m.Stop()
		m.RegisterExecutor("boom", func(context.Context, *Task, func(int, map[string]any)) error {
			return errors.New("remote exploded")
		})

		task, err := m.Submit(context.Background(), "s", &SubmitRequest{Type: "boom"})
		require.NoError(t, err)

		failed := waitForStatus(t, m, task.ID, StatusFailed)
		require.NotNil(t, failed.Error)
		assert.Equal(t, "execution_failed", failed.Error.Code)
		assert.Contains(t, failed.Error.Message, "remote exploded")
	})

	t.Run("fails unknown task type", func(t *testing.T) {
		m := newTestManager(1)
		defer m.Stop()

		task, err := m.Submit(context.Background(), "s", &SubmitRequest{Type: "missing"})
		require.NoError(t, err)

		failed := waitForStatus(t, m, task.ID, StatusFailed)
		assert.Equal(t, "unknown_task_type", failed.Error.Code)
	})

	t.Run("recovers executor panic", func(t *testing.T) {
		m := newTestManager(1)
		defer m.Stop()
		m.RegisterExecutor("panic", func(context.Context, *Task, func(int, map[string]any)) error {
			panic("bad payload")
		})

		task, err := m.Submit(context.Background(), "s", &SubmitRequest{Type: "panic"})
		require.NoError(t, err)

		failed := waitForStatus(t, m, task.ID, StatusFailed)
		assert.Contains(t, failed.Error.Message, "bad payload")
	})

	t.Run("rejects after stop", func(t *testing.T) {
		m := newTestManager(1)
		m.Stop()

		_, err := m.Submit(context.Background(), "s", &SubmitRequest{Type: "noop"})
		assert.Error(t, err)
	})
}

func TestManager_Concurrency(t *testing.T) {
	m := newTestManager(2)
	defer m.Stop()

	var running, peak int32
	release := make(chan struct{})
	m.RegisterExecutor("slow", func(ctx context.Context, _ *Task, _ func(int, map[string]any)) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&running, -1)
		return nil
	})

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		task, err := m.Submit(context.Background(), "s", &SubmitRequest{Type: "slow"})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&running) == 2 }, time.Second, 5*time.Millisecond)
	close(release)

	for _, id := range ids {
		waitForStatus(t, m, id, StatusCompleted)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestManager_StopCancelsExecutors(t *testing.T) {
	m := newTestManager(1)

	started := make(chan struct{})
	m.RegisterExecutor("wait", func(ctx context.Context, _ *Task, _ func(int, map[string]any)) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	task, err := m.Submit(context.Background(), "s", &SubmitRequest{Type: "wait"})
	require.NoError(t, err)
	<-started

	m.Stop()

	got, err := m.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
}

// runningUpdateFails rejects the transition to running.
type runningUpdateFails struct {
	Repository
}

func (r runningUpdateFails) Update(ctx context.Context, task *Task) error {
	if task.Status == StatusRunning {
		return errors.New("store unavailable")
	}
	return r.Repository.Update(ctx, task)
}

func TestManager_OnAbort(t *testing.T) {
	t.Run("stopped before a slot frees", func(t *testing.T) {
		m := newTestManager(1)

		started := make(chan struct{})
		var ran int32
		m.RegisterExecutor("wait", func(ctx context.Context, task *Task, _ func(int, map[string]any)) error {
			if task.Payload == "second" {
				atomic.StoreInt32(&ran, 1)
				return nil
			}
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})

		_, err := m.Submit(context.Background(), "s", &SubmitRequest{Type: "wait", Payload: "first"})
		require.NoError(t, err)
		<-started

		aborted := make(chan error, 1)
		queued, err := m.Submit(context.Background(), "s", &SubmitRequest{
			Type:    "wait",
			Payload: "second",
			OnAbort: func(err error) { aborted <- err },
		})
		require.NoError(t, err)

		m.Stop()

		select {
		case err := <-aborted:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("abort hook not called")
		}
		assert.Zero(t, atomic.LoadInt32(&ran))

		got, err := m.Get(context.Background(), queued.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, got.Status)
		assert.Equal(t, "cancelled", got.Error.Code)
	})

	t.Run("running transition not stored", func(t *testing.T) {
		m := NewManager(runningUpdateFails{NewMemoryRepository(time.Hour)}, nil, &Config{MaxConcurrent: 1})
		defer m.Stop()
		m.RegisterExecutor("noop", func(context.Context, *Task, func(int, map[string]any)) error {
			t.Error("executor must not run")
			return nil
		})

		aborted := make(chan error, 1)
		task, err := m.Submit(context.Background(), "s", &SubmitRequest{
			Type:    "noop",
			OnAbort: func(err error) { aborted <- err },
		})
		require.NoError(t, err)

		select {
		case err := <-aborted:
			assert.Contains(t, err.Error(), "store unavailable")
		case <-time.After(time.Second):
			t.Fatal("abort hook not called")
		}
		failed := waitForStatus(t, m, task.ID, StatusFailed)
		assert.Equal(t, "store_failed", failed.Error.Code)
	})

	t.Run("not called once the executor ran", func(t *testing.T) {
		m := newTestManager(1)
		defer m.Stop()
		m.RegisterExecutor("boom", func(context.Context, *Task, func(int, map[string]any)) error {
			return errors.New("remote exploded")
		})

		var calls int32
		task, err := m.Submit(context.Background(), "s", &SubmitRequest{
			Type:    "boom",
			OnAbort: func(error) { atomic.AddInt32(&calls, 1) },
		})
		require.NoError(t, err)

		waitForStatus(t, m, task.ID, StatusFailed)
		assert.Zero(t, atomic.LoadInt32(&calls))
	})
}

func TestManager_List(t *testing.T) {
	m := newTestManager(2)
	defer m.Stop()
	m.RegisterExecutor("noop", func(context.Context, *Task, func(int, map[string]any)) error { return nil })

	for _, owner := range []string{"a", "a", "b"} {
		_, err := m.Submit(context.Background(), owner, &SubmitRequest{Type: "noop"})
		require.NoError(t, err)
	}

	tasks, err := m.List(context.Background(), "a", nil)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, "a", task.OwnerID)
	}
}
