package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/melodysnap-api/internal/api/shared"
	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/task"
	"github.com/phrazzld/melodysnap-api/internal/video"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", task.ErrTaskNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", task.ErrTaskNotFound), http.StatusNotFound},
		{"in progress", task.ErrTaskInProgress, http.StatusConflict},
		{"not completed", ErrTaskNotCompleted, http.StatusConflict},
		{"queue full", task.ErrQueueFull, http.StatusServiceUnavailable},
		{"queue closed", task.ErrQueueClosed, http.StatusServiceUnavailable},
		{"missing file", shared.ErrMissingFile, http.StatusBadRequest},
		{"too large", shared.ErrFileTooLarge, http.StatusBadRequest},
		{"empty image", domain.ErrEmptyImage, http.StatusBadRequest},
		{"bad duration", video.ErrInvalidDuration, http.StatusBadRequest},
		{"download", &video.DownloadError{StatusCode: 404}, http.StatusBadGateway},
		{"decode", &video.DecodeError{Err: errors.New("x")}, http.StatusUnprocessableEntity},
		{"encode", &video.EncodeError{Stage: "ffmpeg", Err: errors.New("x")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessageHidesDetails(t *testing.T) {
	err := fmt.Errorf("suno said: token=sk-secret-123: %w", errors.New("upstream"))

	msg := GetSafeErrorMessage(err)

	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "sk-secret")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
