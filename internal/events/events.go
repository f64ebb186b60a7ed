package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/melodysnap-api/internal/domain"
)

// Event types
const (
	TypeTaskCreated       = "task.created"
	TypeTaskStatusChanged = "task.status_changed"
	TypeTaskDeleted       = "task.deleted"

	// TypeTaskRejected follows TypeTaskCreated when the queue refuses the
	// task. No other event is emitted for it.
	TypeTaskRejected = "task.rejected"
)

// TaskEvent describes one lifecycle change of a task.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	TaskID string            `json:"task_id"`
	From   domain.TaskStatus `json:"from,omitempty"`
	To     domain.TaskStatus `json:"to"`

	// Error carries the failure description for transitions to failed
	Error string `json:"error,omitempty"`

	// TaskCreatedAt lets handlers compute end-to-end latency
	TaskCreatedAt time.Time `json:"task_created_at"`

	// OccurredAt is the timestamp when the event was created
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskEvent creates a TaskEvent for the current state of task.
func NewTaskEvent(eventType string, from domain.TaskStatus, task *domain.Task) *TaskEvent {
	return &TaskEvent{
		ID:            uuid.New(),
		Type:          eventType,
		TaskID:        task.ID,
		From:          from,
		To:            task.Status,
		Error:         task.Error,
		TaskCreatedAt: task.CreatedAt,
		OccurredAt:    time.Now().UTC(),
	}
}

// Age is the time between task creation and this event.
func (e *TaskEvent) Age() time.Duration {
	return e.OccurredAt.Sub(e.TaskCreatedAt)
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *TaskEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *TaskEvent) error {
	return f(ctx, event)
}
