package mocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/generation"
	"github.com/phrazzld/melodysnap-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockAnalyzer(t *testing.T) {
	t.Parallel()

	t.Run("Default config", func(t *testing.T) {
		t.Parallel()

		m := &mocks.MockAnalyzer{Config: &domain.SongConfig{Title: "Night Drive"}}

		cfg, err := m.Analyze(context.Background(), []byte("img"), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "Night Drive", cfg.Title)

		cfg.Title = "changed"
		assert.Equal(t, "Night Drive", m.Config.Title, "Should return a copy")
		assert.Equal(t, 1, m.Calls())
		assert.Equal(t, []string{"image/png"}, m.MIMETypes())
	})

	t.Run("Error case", func(t *testing.T) {
		t.Parallel()

		m := &mocks.MockAnalyzer{Err: generation.ErrContentBlocked}

		cfg, err := m.Analyze(context.Background(), nil, "image/jpeg")
		assert.ErrorIs(t, err, generation.ErrContentBlocked)
		assert.Nil(t, cfg)
	})
}

func TestMockSubmitter(t *testing.T) {
	t.Parallel()

	m := &mocks.MockSubmitter{JobID: "job-1"}
	cfg := &domain.SongConfig{Title: "Night Drive"}

	id, err := m.Submit(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)
	assert.Equal(t, []*domain.SongConfig{cfg}, m.Submitted())

	m.SubmitFn = func(context.Context, *domain.SongConfig) (string, error) {
		return "", errors.New("rejected")
	}
	_, err = m.Submit(context.Background(), cfg)
	assert.EqualError(t, err, "rejected")
	assert.Len(t, m.Submitted(), 2)
}

func TestScriptedStatusQuerier(t *testing.T) {
	t.Parallel()

	q := mocks.NewScriptedStatusQuerier(
		mocks.JobRunning(),
		mocks.JobFailed("SENSITIVE_WORD_ERROR", "lyrics rejected"),
	)
	ctx := context.Background()

	s, err := q.QueryStatus(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, generation.JobStateRunning, s.State)

	for i := 0; i < 2; i++ {
		s, err = q.QueryStatus(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, generation.JobStateFailed, s.State, "Should repeat the last status")
		assert.Equal(t, "lyrics rejected", s.ErrorMessage)
	}
	assert.Equal(t, []string{"job-1", "job-1", "job-1"}, q.Queries())
}

func TestJobSucceeded(t *testing.T) {
	t.Parallel()

	s := mocks.JobSucceeded("https://cdn.example.com/a.mp3")
	assert.Equal(t, "https://cdn.example.com/a.mp3", s.FirstAudioURL())
}
