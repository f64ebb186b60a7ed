package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/events"
	"github.com/phrazzld/melodysnap-api/internal/generation"
	"github.com/phrazzld/melodysnap-api/internal/metrics"
	"github.com/phrazzld/melodysnap-api/internal/redact"
)

// PipelineDeps holds the collaborators of a pipeline run.
type PipelineDeps struct {
	Store     TaskStore
	Analyzer  generation.Analyzer
	Submitter generation.Submitter
	Poller    Poller
	Emitter   events.EventEmitter // optional
	Logger    *slog.Logger
}

// PipelineJob turns the image of one task into a song:
// analyze, submit, poll, finalize. It is the only writer of its task.
type PipelineJob struct {
	taskID   string
	image    []byte
	mimeType string
	deps     PipelineDeps
	logger   *slog.Logger
}

var _ Job = (*PipelineJob)(nil)

// NewPipelineJob creates the job for a stored task.
func NewPipelineJob(task *domain.Task, deps PipelineDeps) *PipelineJob {
	return &PipelineJob{
		taskID:   task.ID,
		image:    task.Image,
		mimeType: task.ImageMIMEType,
		deps:     deps,
		logger:   deps.Logger.With("task_id", task.ID, "job_type", JobTypePipeline),
	}
}

// ID returns the task id
func (j *PipelineJob) ID() string { return j.taskID }

// Type returns JobTypePipeline
func (j *PipelineJob) Type() string { return JobTypePipeline }

// Execute runs every stage in order. Whatever goes wrong is written to the
// task as a failure before the error is returned.
func (j *PipelineJob) Execute(ctx context.Context) error {
	if err := j.run(ctx); err != nil {
		j.Fail(ctx, err)
		return err
	}
	return nil
}

func (j *PipelineJob) run(ctx context.Context) error {
	if _, err := j.transition(ctx, func(t *domain.Task) error {
		if err := t.TransitionTo(domain.TaskStatusProcessing); err != nil {
			return err
		}
		return t.SetMessage(domain.MessageAnalyzing)
	}); err != nil {
		return fmt.Errorf("failed to start processing: %w", err)
	}

	j.logger.Info("analyzing image", "image_bytes", len(j.image))
	cfg, err := j.deps.Analyzer.Analyze(ctx, j.image, j.mimeType)
	if err != nil {
		return err
	}

	if _, err := j.update(func(t *domain.Task) error {
		if err := t.SetConfig(cfg); err != nil {
			return err
		}
		return t.SetMessage(domain.MessageComposing)
	}); err != nil {
		return err
	}
	j.logger.Info("song brief ready",
		"title", cfg.Title,
		"style", cfg.Style,
		"vocal_gender", cfg.VocalGender)

	if _, err := j.update(func(t *domain.Task) error {
		return t.SetMessage(domain.MessagePlaying)
	}); err != nil {
		return err
	}

	jobID, err := j.deps.Submitter.Submit(ctx, cfg)
	if err != nil {
		return err
	}
	if _, err := j.update(func(t *domain.Task) error {
		return t.SetJobID(jobID)
	}); err != nil {
		return err
	}
	j.logger.Info("generation job submitted", "job_id", jobID)

	result, err := j.deps.Poller.Poll(ctx, jobID, func(attempt int) {
		if _, uerr := j.update(func(t *domain.Task) error {
			return t.RecordPollAttempts(attempt)
		}); uerr != nil {
			j.logger.Warn("failed to record poll attempt", "attempt", attempt, "error", uerr)
		}
	})
	if err != nil {
		var timeout *generation.PollTimeoutError
		if errors.As(err, &timeout) {
			metrics.ObservePollAttempts(timeout.Attempts)
		}
		return err
	}
	metrics.ObservePollAttempts(result.Attempts)

	if _, err := j.transition(ctx, func(t *domain.Task) error {
		if err := t.RecordPollAttempts(result.Attempts); err != nil {
			return err
		}
		return t.Complete(result.URL)
	}); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	j.logger.Info("task completed",
		"job_id", jobID,
		"poll_attempts", result.Attempts,
		"elapsed", result.Elapsed)
	return nil
}

// Fail records err on the task. A task that is already terminal is left alone.
func (j *PipelineJob) Fail(ctx context.Context, err error) {
	reason := redact.Error(err)
	_, uerr := j.transition(ctx, func(t *domain.Task) error {
		return t.Fail(reason)
	})
	switch {
	case uerr == nil:
		j.logger.Error("task failed", "error", reason)
	case errors.Is(uerr, domain.ErrTaskTerminal):
		j.logger.Debug("task already finalized, ignoring failure", "error", reason)
	default:
		j.logger.Error("failed to record task failure",
			"error", reason,
			"update_error", uerr)
	}
}

func (j *PipelineJob) update(fn func(*domain.Task) error) (domain.Task, error) {
	return j.deps.Store.Update(j.taskID, fn)
}

// transition applies a status-changing update and emits the change.
func (j *PipelineJob) transition(ctx context.Context, fn func(*domain.Task) error) (domain.Task, error) {
	var from domain.TaskStatus
	snapshot, err := j.update(func(t *domain.Task) error {
		from = t.Status
		return fn(t)
	})
	if err != nil {
		return snapshot, err
	}

	if j.deps.Emitter != nil && from != snapshot.Status {
		// Emission must not be cut short by a cancelled pipeline context.
		emitCtx := context.WithoutCancel(ctx)
		if err := j.deps.Emitter.EmitEvent(emitCtx, events.NewTaskEvent(events.TypeTaskStatusChanged, from, &snapshot)); err != nil {
			j.logger.Warn("failed to emit status event", "error", err)
		}
	}
	return snapshot, nil
}
