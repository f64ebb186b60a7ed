package task

import "errors"

// Common errors returned by the task package
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskExists     = errors.New("task already exists")
	ErrTaskInProgress = errors.New("task is still in progress")
	ErrQueueClosed    = errors.New("task queue is closed")
	ErrQueueFull      = errors.New("task queue is full")
	ErrRunnerStopped  = errors.New("task runner stopped before the task ran")
	ErrJobPanicked    = errors.New("task pipeline panicked")

	ErrNilStore     = errors.New("task store cannot be nil")
	ErrNilRunner    = errors.New("task runner cannot be nil")
	ErrNilAnalyzer  = errors.New("analyzer cannot be nil")
	ErrNilSubmitter = errors.New("submitter cannot be nil")
	ErrNilPoller    = errors.New("poller cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
)
