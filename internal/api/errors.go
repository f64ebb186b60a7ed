package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/melodysnap-api/internal/api/shared"
	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/task"
	"github.com/phrazzld/melodysnap-api/internal/video"
)

// ErrTaskNotCompleted is returned when a share video is requested for a task
// that has no song yet.
var ErrTaskNotCompleted = errors.New("task has not completed")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var (
		downloadErr *video.DownloadError
		decodeErr   *video.DecodeError
		encodeErr   *video.EncodeError
	)

	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound

	case errors.Is(err, task.ErrTaskInProgress),
		errors.Is(err, ErrTaskNotCompleted):
		return http.StatusConflict

	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	case errors.Is(err, shared.ErrInvalidForm),
		errors.Is(err, shared.ErrMissingFile),
		errors.Is(err, shared.ErrEmptyFile),
		errors.Is(err, shared.ErrFileTooLarge),
		errors.Is(err, shared.ErrNotAnImage),
		errors.Is(err, shared.ErrInvalidNumber),
		errors.Is(err, domain.ErrEmptyImage),
		errors.Is(err, video.ErrInvalidDuration):
		return http.StatusBadRequest

	case errors.As(err, &downloadErr):
		return http.StatusBadGateway

	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity

	case errors.As(err, &encodeErr):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
func GetSafeErrorMessage(err error) string {
	var (
		downloadErr *video.DownloadError
		decodeErr   *video.DecodeError
		encodeErr   *video.EncodeError
	)

	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, task.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, task.ErrTaskInProgress):
		return "Task is still in progress"
	case errors.Is(err, ErrTaskNotCompleted):
		return "Task has not completed yet"
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return "Server is busy, please try again shortly"

	case errors.Is(err, shared.ErrMissingFile):
		return "Image file is required"
	case errors.Is(err, shared.ErrEmptyFile),
		errors.Is(err, domain.ErrEmptyImage):
		return "Image file is empty"
	case errors.Is(err, shared.ErrFileTooLarge):
		return "Image file is too large"
	case errors.Is(err, shared.ErrNotAnImage):
		return "Only image files are supported"
	case errors.Is(err, shared.ErrInvalidForm):
		return "Invalid multipart form"
	case errors.Is(err, shared.ErrInvalidNumber),
		errors.Is(err, video.ErrInvalidDuration):
		return "Duration must be a whole number of seconds between 1 and 60"

	case errors.As(err, &downloadErr):
		return "Failed to download the song audio"
	case errors.As(err, &decodeErr):
		return "Image could not be decoded"
	case errors.As(err, &encodeErr):
		return "Failed to render video"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted details. fallback replaces the generic message for unmapped errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" && msg == "An unexpected error occurred" {
		msg = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}
