package task

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// JobTimeout is the supervisory deadline for a single pipeline run
	JobTimeout time.Duration

	// Retention is how long finished tasks are kept. Zero keeps them forever.
	Retention time.Duration

	// RetentionCheckInterval defines how often expired tasks are swept
	// If zero, defaults to 5 minutes
	RetentionCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            4,
		QueueSize:              100,
		JobTimeout:             6 * time.Minute,
		Retention:              time.Hour,
		RetentionCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background job processing: a bounded queue feeding a
// supervised worker pool, plus a sweeper that expires finished tasks.
type TaskRunner struct {
	store      TaskStore
	queue      *TaskQueue
	pool       *WorkerPool
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(job Job, err error)
	stopOnce   sync.Once
}

var _ JobSubmitter = (*TaskRunner)(nil)

// NewTaskRunner creates a new TaskRunner. store may be nil when no
// retention sweep is wanted.
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.RetentionCheckInterval == 0 {
		config.RetentionCheckInterval = 5 * time.Minute
	}

	logger = logger.With("component", "task_runner")
	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{
		WorkerCount: config.WorkerCount,
		JobTimeout:  config.JobTimeout,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())

	r := &TaskRunner{
		store:      store,
		queue:      queue,
		pool:       pool,
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(job Job, err error) {
			logger.Error("job execution failed",
				"task_id", job.ID(),
				"job_type", job.Type(),
				"error", err)
		},
	}
	pool.SetErrorHandler(r.handleError)
	return r
}

// SetErrorHandler allows setting a custom error handler function.
// It must be called before Start.
func (r *TaskRunner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

func (r *TaskRunner) handleError(job Job, err error) {
	r.errHandler(job, err)
}

// Submit adds a new job to the queue without blocking.
// Returns ErrQueueFull or ErrQueueClosed when the job cannot be accepted.
func (r *TaskRunner) Submit(job Job) error {
	return r.queue.Enqueue(job)
}

// Start begins processing jobs
func (r *TaskRunner) Start() error {
	r.pool.Start()

	if r.store != nil && r.config.Retention > 0 {
		r.wg.Add(1)
		go r.retentionSweeper()
	}

	return nil
}

// Stop cancels in-flight jobs, waits for the workers, then reports every job
// still queued to the error handler with ErrRunnerStopped.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.pool.Stop()
		r.wg.Wait()
		r.queue.Close()

		drained := 0
		for job := range r.queue.GetChannel() {
			r.errHandler(job, ErrRunnerStopped)
			drained++
		}
		if drained > 0 {
			r.logger.Warn("discarded queued jobs on shutdown", "count", drained)
		}
	})
}

// QueueLen returns the number of jobs waiting for a worker
func (r *TaskRunner) QueueLen() int {
	return r.queue.Len()
}

// retentionSweeper periodically deletes finished tasks older than the
// retention window
func (r *TaskRunner) retentionSweeper() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.RetentionCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			removed := r.store.DeleteTerminalBefore(time.Now().Add(-r.config.Retention))
			if removed > 0 {
				r.logger.Info("expired finished tasks",
					"count", removed,
					"retention", r.config.Retention)
			}
		}
	}
}
