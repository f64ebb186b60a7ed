package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/melodysnap-api/internal/api/shared"
	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/platform/logger"
)

// formOverhead is the slack allowed on top of the image size for the rest of
// a multipart body.
const formOverhead = 1 << 20

// TaskService is the part of the task orchestrator the HTTP layer uses.
type TaskService interface {
	CreateTask(ctx context.Context, image []byte) (string, error)
	GetTask(id string) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	Count() int
}

// TaskHandler handles task related HTTP requests
type TaskHandler struct {
	tasks        TaskService
	models       ModelInfo
	maxImageSize int64
	logger       *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks TaskService, models ModelInfo, maxImageSize int64, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:        tasks,
		models:       models,
		maxImageSize: maxImageSize,
		logger:       logger.With("component", "task_handler"),
	}
}

// GenerateMusic handles POST /api/generate-music requests
func (h *TaskHandler) GenerateMusic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageSize+formOverhead)
	image, err := shared.ReadFormFile(r, "image", h.maxImageSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	mimeType, err := shared.SniffImage(image)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	id, err := h.tasks.CreateTask(r.Context(), image)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Info("image accepted",
		"task_id", id,
		"image_bytes", len(image),
		"mime_type", mimeType)

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateMusicResponse{
		TaskID:    id,
		Status:    string(domain.TaskStatusPending),
		Message:   fmt.Sprintf("Task created, processing with %s and Suno %s", h.models.Gemini, h.models.Suno),
		ModelInfo: h.models,
	})
}

// GetTask handles GET /api/task/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.GetTask(chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(t, h.models))
}

// DeleteTask handles DELETE /api/task/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Task deleted"})
}
