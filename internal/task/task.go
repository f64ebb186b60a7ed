package task

import (
	"context"
	"time"

	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/poll"
)

// JobTypePipeline identifies the image-to-song pipeline job.
const JobTypePipeline = "song_pipeline"

// Job represents a unit of background work to be processed
type Job interface {
	// ID returns the identifier of the task the job works on
	ID() string

	// Type returns the job type identifier
	Type() string

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// JobQueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue
type JobQueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs
	GetChannel() <-chan Job
}

// JobQueueWriter provides write access to the job queue
// allowing services to enqueue jobs for processing
type JobQueueWriter interface {
	// Enqueue adds a job to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(job Job) error

	// Close closes the job queue, preventing further job submission
	Close()
}

// JobSubmitter accepts jobs for background execution.
type JobSubmitter interface {
	Submit(job Job) error
}

// TaskStore holds task records for the lifetime of the process.
type TaskStore interface {
	// Insert adds a new task. ErrTaskExists if the id is taken.
	Insert(task *domain.Task) error

	// Get returns a snapshot of the task. ErrTaskNotFound if missing.
	Get(id string) (domain.Task, error)

	// Update applies fn to the live record under the store lock and returns a
	// snapshot of the result. Errors from fn are returned unchanged.
	Update(id string, fn func(*domain.Task) error) (domain.Task, error)

	// Delete removes a task whatever its status.
	Delete(id string) error

	// DeleteIfTerminal removes a completed or failed task.
	// ErrTaskInProgress if the task is still pending or processing.
	DeleteIfTerminal(id string) error

	// DeleteTerminalBefore removes terminal tasks last updated before cutoff
	// and returns how many were removed.
	DeleteTerminalBefore(cutoff time.Time) int

	// List returns snapshots of all tasks, oldest first.
	List() []domain.Task

	// Count returns the number of stored tasks.
	Count() int
}

// Poller drives a generation job to a terminal state.
type Poller interface {
	Poll(ctx context.Context, jobID string, onAttempt func(attempt int)) (*poll.Result, error)
}
