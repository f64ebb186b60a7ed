package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_EnqueueAndReceive(t *testing.T) {
	q := NewTaskQueue(2, testLogger())
	job := &MockJob{IDValue: "a"}

	require.NoError(t, q.Enqueue(job))
	assert.Equal(t, 1, q.Len())

	got := <-q.GetChannel()
	assert.Equal(t, "a", got.ID())
}

func TestTaskQueue_Full(t *testing.T) {
	q := NewTaskQueue(1, testLogger())

	require.NoError(t, q.Enqueue(&MockJob{IDValue: "a"}))
	err := q.Enqueue(&MockJob{IDValue: "b"})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueue_Closed(t *testing.T) {
	q := NewTaskQueue(2, testLogger())
	require.NoError(t, q.Enqueue(&MockJob{IDValue: "a"}))

	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue(&MockJob{IDValue: "b"}), ErrQueueClosed)

	// Buffered jobs survive Close.
	var ids []string
	for job := range q.GetChannel() {
		ids = append(ids, job.ID())
	}
	assert.Equal(t, []string{"a"}, ids)
}
