package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/melodysnap-api/internal/api/shared"
	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/platform/logger"
	"github.com/phrazzld/melodysnap-api/internal/video"
)

// TaskReader looks tasks up by id.
type TaskReader interface {
	GetTask(id string) (domain.Task, error)
}

// Renderer renders share videos.
type Renderer interface {
	Render(ctx context.Context, req video.Request) (*video.Result, error)
}

// VideoHandler renders share videos for completed tasks.
type VideoHandler struct {
	tasks        TaskReader
	renderer     Renderer
	maxImageSize int64
	urlPrefix    string
	logger       *slog.Logger
}

// NewVideoHandler creates a VideoHandler. Rendered files are advertised
// under urlPrefix.
func NewVideoHandler(tasks TaskReader, renderer Renderer, maxImageSize int64, urlPrefix string, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{
		tasks:        tasks,
		renderer:     renderer,
		maxImageSize: maxImageSize,
		urlPrefix:    "/" + strings.Trim(urlPrefix, "/"),
		logger:       logger.With("component", "video_handler"),
	}
}

// ShareVideo handles POST /api/task/{id}/share-video requests.
//
// The task's own photo is used unless the multipart field "image" carries a
// replacement, typically a screenshot of the song card. "duration" may be
// given as a form or query value.
func (h *VideoHandler) ShareVideo(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	t, err := h.tasks.GetTask(chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if t.Status != domain.TaskStatusCompleted || t.ResultURL == "" {
		HandleAPIError(w, r, fmt.Errorf("%w: status %s", ErrTaskNotCompleted, t.Status), "")
		return
	}

	req := video.Request{Image: t.Image, AudioURL: t.ResultURL}
	if t.Config != nil {
		req.Title = t.Config.Title
	}

	if shared.IsMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxImageSize+formOverhead)
		img, err := shared.ReadFormFile(r, "image", h.maxImageSize)
		switch {
		case err == nil:
			if _, err := shared.SniffImage(img); err != nil {
				HandleAPIError(w, r, err, "")
				return
			}
			req.Image = img
		case errors.Is(err, shared.ErrMissingFile):
		default:
			HandleAPIError(w, r, err, "")
			return
		}
	}

	if raw := r.FormValue("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			HandleAPIError(w, r, fmt.Errorf("%w: duration %q", shared.ErrInvalidNumber, raw), "")
			return
		}
		req.Duration = d
	}

	res, err := h.renderer.Render(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to render video")
		return
	}

	log.Info("share video ready", "task_id", t.ID, "video_id", res.ID)
	shared.RespondWithJSON(w, r, http.StatusOK, ShareVideoResponse{
		VideoID:  res.ID,
		VideoURL: path.Join(h.urlPrefix, filepath.Base(res.Path)),
		Duration: res.Duration,
	})
}
