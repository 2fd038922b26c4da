package task

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

var (
	// ErrTaskNotFound is returned when a task is not found.
	ErrTaskNotFound = errors.New("task not found")
)

// Repository defines the interface for task data access.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	Get(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, filter *Filter) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, progress int) error
}

// memoryRepository keeps tasks in process memory. Entries expire after the
// retention period so finished tasks don't accumulate.
type memoryRepository struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewMemoryRepository creates a task repository backed by go-cache.
func NewMemoryRepository(retention time.Duration) Repository {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &memoryRepository{
		cache: gocache.New(retention, retention/2),
	}
}

// Create creates a new task.
func (r *memoryRepository) Create(_ context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Add(task.ID.String(), task.clone(), gocache.DefaultExpiration)
}

// Get retrieves a task by ID.
func (r *memoryRepository) Get(_ context.Context, id uuid.UUID) (*Task, error) {
	v, ok := r.cache.Get(id.String())
	if !ok {
		return nil, ErrTaskNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return v.(*Task).clone(), nil
}

// List lists tasks with optional filters, newest first.
func (r *memoryRepository) List(_ context.Context, filter *Filter) ([]*Task, error) {
	r.mu.Lock()
	var tasks []*Task
	for _, item := range r.cache.Items() {
		t := item.Object.(*Task)
		if filter != nil {
			if filter.OwnerID != "" && t.OwnerID != filter.OwnerID {
				continue
			}
			if filter.Type != "" && t.Type != filter.Type {
				continue
			}
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
		}
		tasks = append(tasks, t.clone())
	}
	r.mu.Unlock()

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	if filter != nil && filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

// Update updates a task.
func (r *memoryRepository) Update(_ context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cache.Get(task.ID.String()); !ok {
		return ErrTaskNotFound
	}
	r.cache.SetDefault(task.ID.String(), task.clone())
	return nil
}

// UpdateStatus updates only the status and progress of a task.
func (r *memoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, status Status, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.cache.Get(id.String())
	if !ok {
		return ErrTaskNotFound
	}
	t := v.(*Task).clone()
	t.Status = status
	t.Progress = progress
	t.UpdatedAt = time.Now()
	r.cache.SetDefault(id.String(), t)
	return nil
}
