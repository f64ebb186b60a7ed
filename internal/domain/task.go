package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the processing state of an image-to-song task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Progress labels shown to clients while a task moves through the pipeline.
const (
	MessageQueued    = "Task created, waiting for a worker"
	MessageAnalyzing = "Analyzing your photo..."
	MessageComposing = "Vibe detected! Composing melody..."
	MessagePlaying   = "AI Band is performing..."
	MessageDone      = "Composition complete!"
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible from s.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
//
// pending -> processing -> {completed, failed}. A pending task may also fail
// directly when it never reaches a worker.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusPending:
		return next == TaskStatusProcessing || next == TaskStatusFailed
	case TaskStatusProcessing:
		return next == TaskStatusCompleted || next == TaskStatusFailed
	default:
		return false
	}
}

// Task is one submitted image on its way to becoming a song.
//
// A task is owned by exactly one pipeline, which is its only writer. Image is
// never modified after creation, so clones share it.
type Task struct {
	ID            string      `json:"id"`
	Status        TaskStatus  `json:"status"`
	Message       string      `json:"message"`
	Config        *SongConfig `json:"config,omitempty"`
	JobID         string      `json:"job_id,omitempty"`
	ResultURL     string      `json:"result_url,omitempty"`
	Error         string      `json:"error,omitempty"`
	PollAttempts  int         `json:"poll_attempts"`
	Image         []byte      `json:"-"`
	ImageMIMEType string      `json:"-"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// NewTask creates a pending Task for the given image.
// It generates a new UUID for the task ID and sets the creation/update timestamps.
func NewTask(image []byte, mimeType string) (*Task, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	now := time.Now().UTC()
	return &Task{
		ID:            uuid.New().String(),
		Status:        TaskStatusPending,
		Message:       MessageQueued,
		Image:         image,
		ImageMIMEType: mimeType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Clone returns a copy of the task that can be handed to readers while the
// owning pipeline keeps mutating the original.
func (t *Task) Clone() Task {
	c := *t
	if t.Config != nil {
		cfg := *t.Config
		c.Config = &cfg
	}
	return c
}

// touch refreshes UpdatedAt, never letting it move backwards.
func (t *Task) touch() {
	now := time.Now().UTC()
	if now.Before(t.UpdatedAt) {
		now = t.UpdatedAt
	}
	t.UpdatedAt = now
}

// checkLive rejects mutation of terminal tasks.
func (t *Task) checkLive() error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: task %s is %s", ErrTaskTerminal, t.ID, t.Status)
	}
	return nil
}

// TransitionTo moves the task to the next status if the state machine allows it.
func (t *Task) TransitionTo(next TaskStatus) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, next)
	}
	if err := t.checkLive(); err != nil {
		return err
	}
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
	}

	t.Status = next
	t.touch()
	return nil
}

// SetMessage overwrites the progress label.
func (t *Task) SetMessage(message string) error {
	if err := t.checkLive(); err != nil {
		return err
	}
	t.Message = message
	t.touch()
	return nil
}

// SetConfig stores the analysis result. It can only be set once.
func (t *Task) SetConfig(cfg *SongConfig) error {
	if err := t.checkLive(); err != nil {
		return err
	}
	if t.Config != nil {
		return fmt.Errorf("%w: config", ErrFieldAlreadySet)
	}
	c := *cfg
	t.Config = &c
	t.touch()
	return nil
}

// SetJobID records the external generation job handle. It can only be set once.
func (t *Task) SetJobID(jobID string) error {
	if err := t.checkLive(); err != nil {
		return err
	}
	if t.JobID != "" {
		return fmt.Errorf("%w: job id", ErrFieldAlreadySet)
	}
	t.JobID = jobID
	t.touch()
	return nil
}

// RecordPollAttempts mirrors the poller's attempt counter into the record.
func (t *Task) RecordPollAttempts(attempts int) error {
	if err := t.checkLive(); err != nil {
		return err
	}
	t.PollAttempts = attempts
	t.touch()
	return nil
}

// Complete finalizes a processing task with the generated audio URL.
func (t *Task) Complete(resultURL string) error {
	if err := t.TransitionTo(TaskStatusCompleted); err != nil {
		return err
	}
	t.ResultURL = resultURL
	t.Message = MessageDone
	return nil
}

// Fail finalizes the task with a failure description. The progress message
// keeps the label of the stage that failed.
func (t *Task) Fail(reason string) error {
	if err := t.TransitionTo(TaskStatusFailed); err != nil {
		return err
	}
	t.Error = reason
	return nil
}
