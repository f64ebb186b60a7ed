package api

import (
	"net/http"

	"github.com/phrazzld/melodysnap-api/internal/api/shared"
)

// TaskCounter reports how many tasks are stored.
type TaskCounter interface {
	Count() int
}

// SystemHandler serves the health and service info endpoints.
type SystemHandler struct {
	tasks   TaskCounter
	models  ModelInfo
	config  ConfigurationStatus
	version string
}

// NewSystemHandler creates a SystemHandler
func NewSystemHandler(tasks TaskCounter, models ModelInfo, config ConfigurationStatus, version string) *SystemHandler {
	return &SystemHandler{tasks: tasks, models: models, config: config, version: version}
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:        "ok",
		TasksCount:    h.tasks.Count(),
		Models:        h.models,
		Configuration: h.config,
	})
}

// Root handles GET /
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, ServiceInfoResponse{
		Service: "MelodySnap API",
		Version: h.version,
		Models:  h.models,
		Health:  "/health",
		Metrics: "/metrics",
	})
}
