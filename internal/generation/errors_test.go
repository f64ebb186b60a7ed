package generation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("analyze: %w", &AnalysisError{MissingFields: []string{"title"}})
	var ae *AnalysisError
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, []string{"title"}, ae.MissingFields)
	assert.Contains(t, err.Error(), "title")

	wrapped := &AnalysisError{Err: ErrInvalidResponse}
	assert.ErrorIs(t, wrapped, ErrInvalidResponse)
}

func TestSubmissionError(t *testing.T) {
	t.Parallel()

	timeout := &SubmissionError{StatusCode: 504, Body: "<html>gateway</html>"}
	assert.True(t, timeout.IsGatewayTimeout())
	assert.Contains(t, timeout.Error(), "504")
	assert.Contains(t, timeout.Error(), "token")
	assert.NotContains(t, timeout.Error(), "<html>")

	rejected := &SubmissionError{StatusCode: 401, Body: "unauthorized"}
	assert.False(t, rejected.IsGatewayTimeout())
	assert.Contains(t, rejected.Error(), "401")
	assert.Contains(t, rejected.Error(), "unauthorized")
}

func TestPollErrors(t *testing.T) {
	t.Parallel()

	fail := &PollFailureError{JobID: "j1", Reason: "lyrics rejected"}
	assert.Equal(t, "music generation job j1 failed: lyrics rejected", fail.Error())

	timeout := &PollTimeoutError{JobID: "j1", Attempts: 60, Budget: 300 * time.Second}
	assert.Contains(t, timeout.Error(), "60")
	assert.Contains(t, timeout.Error(), "5m0s")
}

func TestJobStatusFirstAudioURL(t *testing.T) {
	t.Parallel()

	var nilStatus *JobStatus
	assert.Empty(t, nilStatus.FirstAudioURL())
	assert.Empty(t, (&JobStatus{State: JobStateSucceeded}).FirstAudioURL())

	s := &JobStatus{Variants: []Variant{{AudioURL: "https://a"}, {AudioURL: "https://b"}}}
	assert.Equal(t, "https://a", s.FirstAudioURL())
}
