package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Executor defines the function signature for task executors.
// Executors should update task output via the provided callback.
type Executor func(ctx context.Context, task *Task, onProgress func(progress int, output map[string]any)) error

// Manager manages async tasks with pluggable executors.
type Manager struct {
	mu sync.RWMutex

	repo      Repository
	executors map[string]Executor
	logger    *zap.Logger

	// Configuration
	config *Config

	// Concurrency control
	semaphore chan struct{}

	// Lifecycle
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Config contains manager configuration.
type Config struct {
	MaxConcurrent int           `json:"max_concurrent" yaml:"max_concurrent"`
	TaskTimeout   time.Duration `json:"task_timeout" yaml:"task_timeout"`
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrent: 10,
		TaskTimeout:   30 * time.Minute,
	}
}

// NewManager creates a new task manager.
func NewManager(repo Repository, logger *zap.Logger, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		repo:      repo,
		executors: make(map[string]Executor),
		logger:    logger.Named("task-manager"),
		config:    config,
		semaphore: make(chan struct{}, config.MaxConcurrent),
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Stop cancels running executors and waits for them to return.
func (m *Manager) Stop() {
	m.logger.Info("stopping task manager")
	m.cancel()
	m.wg.Wait()
	m.logger.Info("task manager stopped")
}

// RegisterExecutor registers a task executor for a specific task type.
func (m *Manager) RegisterExecutor(taskType string, executor Executor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executors[taskType] = executor
	m.logger.Debug("registered executor", zap.String("task_type", taskType))
}

// Submit submits a new task for immediate execution.
func (m *Manager) Submit(ctx context.Context, ownerID string, req *SubmitRequest) (*Task, error) {
	if err := m.baseCtx.Err(); err != nil {
		return nil, fmt.Errorf("task manager stopped: %w", err)
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now()
	task := &Task{
		ID:        id,
		OwnerID:   ownerID,
		Type:      req.Type,
		Status:    StatusPending,
		Progress:  0,
		Payload:   req.Payload,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	m.logger.Debug("task submitted",
		zap.String("task_id", task.ID.String()),
		zap.String("type", task.Type),
		zap.String("owner_id", ownerID))

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = m.config.TaskTimeout
	}

	out := task.clone()

	// Start execution in background
	m.wg.Add(1)
	go m.executeTask(task, timeout, req.OnAbort)

	return out, nil
}

// Get retrieves a task by ID.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	return m.repo.Get(ctx, id)
}

// List lists tasks for an owner.
func (m *Manager) List(ctx context.Context, ownerID string, filter *Filter) ([]*Task, error) {
	if filter == nil {
		filter = &Filter{}
	}
	filter.OwnerID = ownerID
	return m.repo.List(ctx, filter)
}

// executeTask executes a task.
func (m *Manager) executeTask(task *Task, timeout time.Duration, onAbort func(error)) {
	defer m.wg.Done()

	abort := func(err error) {
		if onAbort != nil {
			onAbort(err)
		}
	}

	// Acquire semaphore
	select {
	case <-m.baseCtx.Done():
		m.failTask(context.Background(), task, "cancelled", "task manager stopped before execution")
		abort(fmt.Errorf("task manager stopped: %w", m.baseCtx.Err()))
		return
	case m.semaphore <- struct{}{}:
		defer func() { <-m.semaphore }()
	}

	ctx := m.baseCtx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Get executor
	m.mu.RLock()
	executor, ok := m.executors[task.Type]
	m.mu.RUnlock()

	if !ok {
		m.failTask(ctx, task, "unknown_task_type", "no executor registered for task type: "+task.Type)
		abort(fmt.Errorf("no executor registered for task type: %s", task.Type))
		return
	}

	// Update status to running
	task.Status = StatusRunning
	task.UpdatedAt = time.Now()
	if err := m.repo.Update(ctx, task); err != nil {
		m.logger.Error("failed to update task status",
			zap.String("task_id", task.ID.String()),
			zap.Error(err))
		m.failTask(context.Background(), task, "store_failed", err.Error())
		abort(fmt.Errorf("mark task running: %w", err))
		return
	}

	// Execute with progress callback
	onProgress := func(progress int, output map[string]any) {
		task.Progress = progress
		if output != nil {
			task.Output = output
		}
		task.UpdatedAt = time.Now()
		if err := m.repo.Update(context.Background(), task); err != nil {
			m.logger.Debug("failed to record progress",
				zap.String("task_id", task.ID.String()),
				zap.Error(err))
		}
	}

	if err := m.run(ctx, executor, task, onProgress); err != nil {
		m.failTask(context.Background(), task, "execution_failed", err.Error())
		return
	}

	// Complete
	task.Status = StatusCompleted
	task.Progress = 100
	now := time.Now()
	task.CompletedAt = &now
	task.UpdatedAt = now

	if err := m.repo.Update(context.Background(), task); err != nil {
		m.logger.Error("failed to update completed task",
			zap.String("task_id", task.ID.String()),
			zap.Error(err))
		return
	}

	m.logger.Debug("task completed",
		zap.String("task_id", task.ID.String()),
		zap.Duration("elapsed", now.Sub(task.CreatedAt)))
}

// run invokes the executor and converts a panic into an error.
func (m *Manager) run(ctx context.Context, executor Executor, task *Task, onProgress func(int, map[string]any)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("executor panicked",
				zap.String("task_id", task.ID.String()),
				zap.Any("panic", r))
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()
	return executor(ctx, task, onProgress)
}

// failTask marks a task as failed.
func (m *Manager) failTask(ctx context.Context, task *Task, code, message string) {
	task.Status = StatusFailed
	task.Error = &Error{
		Code:    code,
		Message: message,
	}
	now := time.Now()
	task.CompletedAt = &now
	task.UpdatedAt = now

	if err := m.repo.Update(ctx, task); err != nil {
		m.logger.Error("failed to update failed task",
			zap.String("task_id", task.ID.String()),
			zap.Error(err))
	}

	m.logger.Warn("task failed",
		zap.String("task_id", task.ID.String()),
		zap.String("code", code),
		zap.String("message", message))
}
