// Package task provides an in-process task manager for async operations.
// It supports task submission, bounded concurrent execution and progress tracking.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the status of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Error represents a task error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Task represents a generic async task.
type Task struct {
	ID          uuid.UUID      `json:"id"`
	OwnerID     string         `json:"owner_id"`
	Type        string         `json:"type"`
	Status      Status         `json:"status"`
	Progress    int            `json:"progress"`
	Payload     any            `json:"-"`
	Output      map[string]any `json:"output,omitempty"`
	Error       *Error         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// IsTerminal checks if the task is in a terminal state.
func (t *Task) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed || t.Status == StatusCancelled
}

// clone returns a copy safe to hand out while the executor keeps mutating the original.
func (t *Task) clone() *Task {
	c := *t
	if t.Output != nil {
		c.Output = make(map[string]any, len(t.Output))
		for k, v := range t.Output {
			c.Output[k] = v
		}
	}
	if t.Error != nil {
		e := *t.Error
		c.Error = &e
	}
	return &c
}

// Filter represents task filter options.
type Filter struct {
	OwnerID string
	Type    string
	Status  Status
	Limit   int
}

// SubmitRequest represents a task submission request.
type SubmitRequest struct {
	// ID is optional; a random ID is assigned when zero.
	ID      uuid.UUID
	Type    string
	Payload any
	Timeout time.Duration
	// OnAbort runs once if the task ends before its executor was invoked.
	OnAbort func(err error)
}
