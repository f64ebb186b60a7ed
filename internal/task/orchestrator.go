package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/events"
	"github.com/phrazzld/melodysnap-api/internal/generation"
	"github.com/phrazzld/melodysnap-api/internal/metrics"
)

// Dependencies wires an Orchestrator.
type Dependencies struct {
	Store     TaskStore
	Runner    JobSubmitter
	Analyzer  generation.Analyzer
	Submitter generation.Submitter
	Poller    Poller
	Emitter   events.EventEmitter // optional
	Logger    *slog.Logger
}

// Orchestrator creates tasks, schedules their pipelines and answers queries
// about them.
type Orchestrator struct {
	store    TaskStore
	runner   JobSubmitter
	pipeline PipelineDeps
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewOrchestrator validates deps and creates an Orchestrator.
func NewOrchestrator(deps Dependencies) (*Orchestrator, error) {
	switch {
	case deps.Store == nil:
		return nil, ErrNilStore
	case deps.Runner == nil:
		return nil, ErrNilRunner
	case deps.Analyzer == nil:
		return nil, ErrNilAnalyzer
	case deps.Submitter == nil:
		return nil, ErrNilSubmitter
	case deps.Poller == nil:
		return nil, ErrNilPoller
	case deps.Logger == nil:
		return nil, ErrNilLogger
	}

	logger := deps.Logger.With("component", "task_orchestrator")
	return &Orchestrator{
		store:  deps.Store,
		runner: deps.Runner,
		pipeline: PipelineDeps{
			Store:     deps.Store,
			Analyzer:  deps.Analyzer,
			Submitter: deps.Submitter,
			Poller:    deps.Poller,
			Emitter:   deps.Emitter,
			Logger:    deps.Logger.With("component", "task_pipeline"),
		},
		emitter: deps.Emitter,
		logger:  logger,
	}, nil
}

// CreateTask stores a pending task for image and schedules its pipeline.
// It returns as soon as the job is queued. When the queue refuses the job the
// record is removed, a rejection event follows the creation event and the
// queue error is returned.
func (o *Orchestrator) CreateTask(ctx context.Context, image []byte) (string, error) {
	mimeType := ""
	if len(image) > 0 {
		mimeType = mimetype.Detect(image).String()
	}

	t, err := domain.NewTask(image, mimeType)
	if err != nil {
		return "", err
	}
	if err := o.store.Insert(t); err != nil {
		return "", fmt.Errorf("failed to store task: %w", err)
	}

	// Emitted before Submit: a worker may report the first transition before
	// Submit returns.
	o.emit(ctx, events.NewTaskEvent(events.TypeTaskCreated, "", t))

	if err := o.runner.Submit(NewPipelineJob(t, o.pipeline)); err != nil {
		if derr := o.store.Delete(t.ID); derr != nil {
			o.logger.Error("failed to remove rejected task", "task_id", t.ID, "error", derr)
		}
		rejected := events.NewTaskEvent(events.TypeTaskRejected, t.Status, t)
		rejected.Error = err.Error()
		o.emit(ctx, rejected)
		metrics.RecordRejected(rejectReason(err))
		o.logger.Warn("task rejected", "task_id", t.ID, "error", err)
		return "", fmt.Errorf("failed to schedule task: %w", err)
	}

	o.logger.Info("task created",
		"task_id", t.ID,
		"image_bytes", len(image),
		"mime_type", mimeType)
	return t.ID, nil
}

// GetTask returns a snapshot of the task.
func (o *Orchestrator) GetTask(id string) (domain.Task, error) {
	return o.store.Get(id)
}

// DeleteTask removes a finished task. Tasks still pending or processing are
// refused with ErrTaskInProgress.
func (o *Orchestrator) DeleteTask(ctx context.Context, id string) error {
	t, err := o.store.Get(id)
	if err != nil {
		return err
	}
	if err := o.store.DeleteIfTerminal(id); err != nil {
		return err
	}

	o.emit(ctx, events.NewTaskEvent(events.TypeTaskDeleted, t.Status, &t))
	o.logger.Info("task deleted", "task_id", id, "status", t.Status)
	return nil
}

// ListTasks returns snapshots of every stored task, oldest first.
func (o *Orchestrator) ListTasks() []domain.Task {
	return o.store.List()
}

// Count returns the number of stored tasks.
func (o *Orchestrator) Count() int {
	return o.store.Count()
}

// HandleJobError is the runner's error handler. It makes sure a job that
// panicked, timed out or never ran leaves a failed task behind.
func (o *Orchestrator) HandleJobError(job Job, err error) {
	if pj, ok := job.(*PipelineJob); ok {
		pj.Fail(context.Background(), err)
		return
	}
	o.logger.Error("job execution failed",
		"task_id", job.ID(),
		"job_type", job.Type(),
		"error", err)
}

func (o *Orchestrator) emit(ctx context.Context, e *events.TaskEvent) {
	if o.emitter == nil {
		return
	}
	if err := o.emitter.EmitEvent(ctx, e); err != nil {
		o.logger.Warn("failed to emit task event",
			"event_type", e.Type,
			"task_id", e.TaskID,
			"error", err)
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrQueueFull):
		return "queue_full"
	case errors.Is(err, ErrQueueClosed):
		return "queue_closed"
	default:
		return "other"
	}
}
