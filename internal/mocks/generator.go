package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/generation"
)

var (
	_ generation.Analyzer      = (*MockAnalyzer)(nil)
	_ generation.Submitter     = (*MockSubmitter)(nil)
	_ generation.StatusQuerier = (*MockStatusQuerier)(nil)
)

// MockAnalyzer implements generation.Analyzer for testing
type MockAnalyzer struct {
	// AnalyzeFn allows test cases to mock the Analyze behavior
	AnalyzeFn func(ctx context.Context, image []byte, mimeType string) (*domain.SongConfig, error)

	// Default response values, used when AnalyzeFn is nil
	Config *domain.SongConfig
	Err    error

	mu        sync.Mutex
	calls     int
	mimeTypes []string
}

// Analyze implements the generation.Analyzer interface
func (m *MockAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*domain.SongConfig, error) {
	m.mu.Lock()
	m.calls++
	m.mimeTypes = append(m.mimeTypes, mimeType)
	m.mu.Unlock()

	if m.AnalyzeFn != nil {
		return m.AnalyzeFn(ctx, image, mimeType)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Config == nil {
		return nil, nil
	}
	cfg := *m.Config
	return &cfg, nil
}

// Calls returns how many times Analyze was called
func (m *MockAnalyzer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MIMETypes returns the MIME types passed to Analyze, in call order
func (m *MockAnalyzer) MIMETypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.mimeTypes...)
}

// MockSubmitter implements generation.Submitter for testing
type MockSubmitter struct {
	SubmitFn func(ctx context.Context, cfg *domain.SongConfig) (string, error)

	// JobID and Err are returned when SubmitFn is nil
	JobID string
	Err   error

	mu      sync.Mutex
	configs []*domain.SongConfig
}

// Submit implements the generation.Submitter interface
func (m *MockSubmitter) Submit(ctx context.Context, cfg *domain.SongConfig) (string, error) {
	m.mu.Lock()
	m.configs = append(m.configs, cfg)
	m.mu.Unlock()

	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, cfg)
	}
	return m.JobID, m.Err
}

// Submitted returns every configuration passed to Submit
func (m *MockSubmitter) Submitted() []*domain.SongConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.SongConfig(nil), m.configs...)
}

// MockStatusQuerier implements generation.StatusQuerier for testing
type MockStatusQuerier struct {
	QueryStatusFn func(ctx context.Context, jobID string) (*generation.JobStatus, error)

	mu     sync.Mutex
	jobIDs []string
}

// QueryStatus implements the generation.StatusQuerier interface
func (m *MockStatusQuerier) QueryStatus(ctx context.Context, jobID string) (*generation.JobStatus, error) {
	m.mu.Lock()
	m.jobIDs = append(m.jobIDs, jobID)
	m.mu.Unlock()

	if m.QueryStatusFn == nil {
		return JobRunning(), nil
	}
	return m.QueryStatusFn(ctx, jobID)
}

// Queries returns the job ids passed to QueryStatus, in call order
func (m *MockStatusQuerier) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.jobIDs...)
}

// NewScriptedStatusQuerier answers with the given statuses in order and
// repeats the last one once the script runs out.
func NewScriptedStatusQuerier(statuses ...*generation.JobStatus) *MockStatusQuerier {
	var mu sync.Mutex
	i := 0
	return &MockStatusQuerier{
		QueryStatusFn: func(_ context.Context, _ string) (*generation.JobStatus, error) {
			mu.Lock()
			defer mu.Unlock()
			if len(statuses) == 0 {
				return JobRunning(), nil
			}
			s := statuses[i]
			if i < len(statuses)-1 {
				i++
			}
			return s, nil
		},
	}
}

// JobRunning is a status of a job that has not finished yet
func JobRunning() *generation.JobStatus {
	return &generation.JobStatus{State: generation.JobStateRunning, RawState: "PENDING"}
}

// JobSucceeded is a finished job whose first variant plays url
func JobSucceeded(url string) *generation.JobStatus {
	return &generation.JobStatus{
		State:    generation.JobStateSucceeded,
		RawState: "SUCCESS",
		Variants: []generation.Variant{{ID: "v1", AudioURL: url}},
	}
}

// JobFailed is a job the vendor gave up on
func JobFailed(rawState, message string) *generation.JobStatus {
	return &generation.JobStatus{
		State:        generation.JobStateFailed,
		RawState:     rawState,
		ErrorMessage: message,
	}
}
