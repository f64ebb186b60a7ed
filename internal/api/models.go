package api

import (
	"time"

	"github.com/phrazzld/melodysnap-api/internal/domain"
)

// ModelInfo names the models a task runs through.
type ModelInfo struct {
	Gemini string `json:"gemini"`
	Suno   string `json:"suno"`
}

// GenerateMusicResponse is returned when an upload is accepted.
type GenerateMusicResponse struct {
	TaskID    string    `json:"task_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	ModelInfo ModelInfo `json:"model_info"`
}

// TaskDetailResponse is the polling view of a task.
type TaskDetailResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`

	// GeminiConfig and AnalysisResult both carry the song brief; clients
	// read one or the other.
	GeminiConfig   *domain.SongConfig `json:"gemini_config"`
	AnalysisResult *domain.SongConfig `json:"analysis_result"`

	MusicURL     *string   `json:"music_url"`
	Error        *string   `json:"error"`
	JobID        string    `json:"job_id,omitempty"`
	PollAttempts int       `json:"poll_attempts"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ModelInfo    ModelInfo `json:"model_info"`
}

// MessageResponse carries a single human readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ShareVideoResponse points at a rendered share video.
type ShareVideoResponse struct {
	VideoID  string `json:"video_id"`
	VideoURL string `json:"video_url"`
	Duration int    `json:"duration"`
}

// ConfigurationStatus reports which vendor credentials are present.
type ConfigurationStatus struct {
	GeminiConfigured bool `json:"gemini_configured"`
	SunoConfigured   bool `json:"suno_configured"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string              `json:"status"`
	TasksCount    int                 `json:"tasks_count"`
	Models        ModelInfo           `json:"models"`
	Configuration ConfigurationStatus `json:"configuration"`
}

// ServiceInfoResponse is the body of GET /.
type ServiceInfoResponse struct {
	Service string    `json:"service"`
	Version string    `json:"version"`
	Models  ModelInfo `json:"models"`
	Health  string    `json:"health"`
	Metrics string    `json:"metrics"`
}

// taskToResponse converts a task snapshot to its API view
func taskToResponse(t domain.Task, models ModelInfo) TaskDetailResponse {
	resp := TaskDetailResponse{
		TaskID:         t.ID,
		Status:         string(t.Status),
		Message:        t.Message,
		GeminiConfig:   t.Config,
		AnalysisResult: t.Config,
		JobID:          t.JobID,
		PollAttempts:   t.PollAttempts,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		ModelInfo:      models,
	}
	if t.ResultURL != "" {
		url := t.ResultURL
		resp.MusicURL = &url
	}
	if t.Error != "" {
		msg := t.Error
		resp.Error = &msg
	}
	return resp
}
