package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorLog struct {
	mu   sync.Mutex
	errs map[string]error
}

func newErrorLog() *errorLog {
	return &errorLog{errs: make(map[string]error)}
}

func (l *errorLog) handle(job Job, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs[job.ID()] = err
}

func (l *errorLog) get(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errs[id]
}

func newTestRunner(t *testing.T, cfg TaskRunnerConfig) (*TaskRunner, *errorLog) {
	t.Helper()
	r := NewTaskRunner(nil, cfg, testLogger())
	log := newErrorLog()
	r.SetErrorHandler(log.handle)
	require.NoError(t, r.Start())
	t.Cleanup(r.Stop)
	return r, log
}

func TestTaskRunner_ExecutesJobs(t *testing.T) {
	r, log := newTestRunner(t, TaskRunnerConfig{WorkerCount: 2, QueueSize: 10})

	var wg sync.WaitGroup
	wg.Add(3)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.Submit(&MockJob{IDValue: id, ExecuteFn: func(context.Context) error {
			wg.Done()
			return nil
		}}))
	}
	wg.Wait()

	assert.NoError(t, log.get("a"))
}

func TestTaskRunner_RecoversPanics(t *testing.T) {
	r, log := newTestRunner(t, TaskRunnerConfig{WorkerCount: 1, QueueSize: 10})

	require.NoError(t, r.Submit(&MockJob{IDValue: "panic", ExecuteFn: func(context.Context) error {
		panic("kaboom")
	}}))

	require.Eventually(t, func() bool { return log.get("panic") != nil }, time.Second, 5*time.Millisecond)
	err := log.get("panic")
	assert.ErrorIs(t, err, ErrJobPanicked)
	assert.Contains(t, err.Error(), "kaboom")

	// The worker survives the panic.
	done := make(chan struct{})
	require.NoError(t, r.Submit(&MockJob{IDValue: "next", ExecuteFn: func(context.Context) error {
		close(done)
		return nil
	}}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not pick up the next job after a panic")
	}
}

func TestTaskRunner_JobTimeout(t *testing.T) {
	r, log := newTestRunner(t, TaskRunnerConfig{WorkerCount: 1, QueueSize: 1, JobTimeout: 20 * time.Millisecond})

	require.NoError(t, r.Submit(&MockJob{IDValue: "slow", ExecuteFn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}))

	require.Eventually(t, func() bool { return log.get("slow") != nil }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, log.get("slow"), context.DeadlineExceeded)
}

func TestTaskRunner_StopCancelsAndDrains(t *testing.T) {
	r := NewTaskRunner(nil, TaskRunnerConfig{WorkerCount: 1, QueueSize: 5}, testLogger())
	log := newErrorLog()
	r.SetErrorHandler(log.handle)
	require.NoError(t, r.Start())

	started := make(chan struct{})
	require.NoError(t, r.Submit(&MockJob{IDValue: "inflight", ExecuteFn: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}}))
	<-started
	require.NoError(t, r.Submit(&MockJob{IDValue: "queued"}))

	r.Stop()

	assert.ErrorIs(t, log.get("inflight"), context.Canceled)
	assert.ErrorIs(t, log.get("queued"), ErrRunnerStopped)
	assert.ErrorIs(t, r.Submit(&MockJob{IDValue: "late"}), ErrQueueClosed)

	// Stop is idempotent.
	r.Stop()
}

func TestTaskRunner_SubmitQueueFull(t *testing.T) {
	r := NewTaskRunner(nil, TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, testLogger())

	require.NoError(t, r.Submit(&MockJob{IDValue: "a"}))
	err := r.Submit(&MockJob{IDValue: "b"})
	assert.True(t, errors.Is(err, ErrQueueFull))
	assert.Equal(t, 1, r.QueueLen())
}

func TestTaskRunner_RetentionSweep(t *testing.T) {
	store := NewMemoryTaskStore()
	task := newStoredTask(t, store)
	_, err := store.Update(task.ID, func(tk *domain.Task) error { return tk.Fail("nope") })
	require.NoError(t, err)

	r := NewTaskRunner(store, TaskRunnerConfig{
		WorkerCount:            1,
		QueueSize:              1,
		Retention:              time.Nanosecond,
		RetentionCheckInterval: 5 * time.Millisecond,
	}, testLogger())
	require.NoError(t, r.Start())
	defer r.Stop()

	require.Eventually(t, func() bool { return store.Count() == 0 }, time.Second, 5*time.Millisecond)
}
