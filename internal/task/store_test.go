package task

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredTask(t *testing.T, s *MemoryTaskStore) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(pngHeader, "image/png")
	require.NoError(t, err)
	require.NoError(t, s.Insert(task))
	return task
}

func TestMemoryTaskStore_InsertAndGet(t *testing.T) {
	s := NewMemoryTaskStore()
	task := newStoredTask(t, s)

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, domain.TaskStatusPending, got.Status)
	assert.Equal(t, 1, s.Count())

	err = s.Insert(task)
	assert.ErrorIs(t, err, ErrTaskExists)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryTaskStore_SnapshotsAreIsolated(t *testing.T) {
	s := NewMemoryTaskStore()
	task := newStoredTask(t, s)

	_, err := s.Update(task.ID, func(tk *domain.Task) error {
		if err := tk.TransitionTo(domain.TaskStatusProcessing); err != nil {
			return err
		}
		return tk.SetConfig(validSongConfig())
	})
	require.NoError(t, err)

	snap, err := s.Get(task.ID)
	require.NoError(t, err)
	snap.Status = domain.TaskStatusFailed
	snap.Config.Title = "changed"

	again, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusProcessing, again.Status)
	assert.Equal(t, "Night Drive", again.Config.Title)
}

func TestMemoryTaskStore_UpdateFailureLeavesRecord(t *testing.T) {
	s := NewMemoryTaskStore()
	task := newStoredTask(t, s)
	boom := errors.New("boom")

	_, err := s.Update(task.ID, func(tk *domain.Task) error {
		tk.Message = "half written"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageQueued, got.Message)

	_, err = s.Update("missing", func(*domain.Task) error { return nil })
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryTaskStore_DeleteIfTerminal(t *testing.T) {
	s := NewMemoryTaskStore()
	task := newStoredTask(t, s)

	err := s.DeleteIfTerminal(task.ID)
	assert.ErrorIs(t, err, ErrTaskInProgress)
	assert.Equal(t, 1, s.Count())

	_, err = s.Update(task.ID, func(tk *domain.Task) error { return tk.Fail("nope") })
	require.NoError(t, err)

	require.NoError(t, s.DeleteIfTerminal(task.ID))
	assert.Equal(t, 0, s.Count())
	assert.ErrorIs(t, s.DeleteIfTerminal(task.ID), ErrTaskNotFound)
}

func TestMemoryTaskStore_DeleteTerminalBefore(t *testing.T) {
	s := NewMemoryTaskStore()
	done := newStoredTask(t, s)
	live := newStoredTask(t, s)

	_, err := s.Update(done.ID, func(tk *domain.Task) error { return tk.Fail("nope") })
	require.NoError(t, err)

	assert.Equal(t, 0, s.DeleteTerminalBefore(time.Now().Add(-time.Hour)))
	assert.Equal(t, 1, s.DeleteTerminalBefore(time.Now().Add(time.Hour)))

	_, err = s.Get(live.ID)
	assert.NoError(t, err)
	_, err = s.Get(done.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryTaskStore_ListOldestFirst(t *testing.T) {
	s := NewMemoryTaskStore()
	first := newStoredTask(t, s)
	time.Sleep(2 * time.Millisecond)
	second := newStoredTask(t, s)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestMemoryTaskStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryTaskStore()
	task := newStoredTask(t, s)
	_, err := s.Update(task.ID, func(tk *domain.Task) error {
		return tk.TransitionTo(domain.TaskStatusProcessing)
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_, _ = s.Update(task.ID, func(tk *domain.Task) error {
				return tk.RecordPollAttempts(n)
			})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.Get(task.ID)
			_ = s.List()
		}()
	}
	wg.Wait()

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Positive(t, got.PollAttempts)
}
