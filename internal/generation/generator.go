package generation

import (
	"context"

	"github.com/phrazzld/melodysnap-api/internal/domain"
)

// Analyzer turns an image into the parameters of a song.
type Analyzer interface {
	// Analyze inspects the image and returns a complete song configuration.
	// Malformed or incomplete model output is reported as *AnalysisError.
	Analyze(ctx context.Context, image []byte, mimeType string) (*domain.SongConfig, error)
}

// Submitter starts a music generation job.
type Submitter interface {
	// Submit sends the configuration to the generation service and returns the
	// opaque job handle. Rejections are reported as *SubmissionError.
	Submit(ctx context.Context, cfg *domain.SongConfig) (string, error)
}

// StatusQuerier reports the current state of a generation job.
type StatusQuerier interface {
	// QueryStatus performs one status lookup. A returned error is transient
	// from the caller's point of view.
	QueryStatus(ctx context.Context, jobID string) (*JobStatus, error)
}

// JobState is the normalized state of an external generation job.
type JobState string

// Job states
const (
	JobStateRunning   JobState = "running"
	JobStateSucceeded JobState = "succeeded"
	JobStateFailed    JobState = "failed"
)

// Variant is one rendition produced by a generation job.
type Variant struct {
	ID       string  `json:"id,omitempty"`
	AudioURL string  `json:"audio_url"`
	ImageURL string  `json:"image_url,omitempty"`
	Title    string  `json:"title,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// JobStatus is the result of a single status query.
type JobStatus struct {
	State        JobState
	RawState     string
	Variants     []Variant
	ErrorMessage string
}

// FirstAudioURL returns the audio URL of the first variant, or "" when the
// job has not produced a playable result yet.
func (s *JobStatus) FirstAudioURL() string {
	if s == nil || len(s.Variants) == 0 {
		return ""
	}
	return s.Variants[0].AudioURL
}
