package task

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func validSongConfig() *domain.SongConfig {
	return &domain.SongConfig{
		Prompt:              "neon rain over an empty street",
		Style:               "synthwave, dreamy",
		Title:               "Night Drive",
		VocalGender:         domain.VocalGenderFemale,
		CustomMode:          true,
		Model:               "V5",
		StyleWeight:         0.65,
		WeirdnessConstraint: 0.65,
		AudioWeight:         0.65,
	}
}

// MockJob is a Job whose behavior is set per test.
type MockJob struct {
	IDValue   string
	ExecuteFn func(ctx context.Context) error
}

func (m *MockJob) ID() string   { return m.IDValue }
func (m *MockJob) Type() string { return "mock" }

func (m *MockJob) Execute(ctx context.Context) error {
	if m.ExecuteFn == nil {
		return nil
	}
	return m.ExecuteFn(ctx)
}

// recordingHandler keeps every event it receives.
type recordingHandler struct {
	mu     sync.Mutex
	events []*events.TaskEvent
}

func (h *recordingHandler) HandleEvent(_ context.Context, e *events.TaskEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return nil
}

func (h *recordingHandler) Types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Type+":"+string(e.To))
	}
	return out
}

func (h *recordingHandler) Events() []*events.TaskEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*events.TaskEvent(nil), h.events...)
}
