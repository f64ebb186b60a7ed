package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/task"
	"github.com/phrazzld/melodysnap-api/internal/video"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

var testModels = ModelInfo{Gemini: "gemini-2.5-flash", Suno: "V4_5"}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockTaskService is a mock implementation of TaskService
type MockTaskService struct {
	CreateTaskFn func(ctx context.Context, image []byte) (string, error)
	GetTaskFn    func(id string) (domain.Task, error)
	DeleteTaskFn func(ctx context.Context, id string) error
	CountFn      func() int
}

func (m *MockTaskService) CreateTask(ctx context.Context, image []byte) (string, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, image)
	}
	return "task-1", nil
}

func (m *MockTaskService) GetTask(id string) (domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(id)
	}
	return domain.Task{}, task.ErrTaskNotFound
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id string) error {
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, id)
	}
	return nil
}

func (m *MockTaskService) Count() int {
	if m.CountFn != nil {
		return m.CountFn()
	}
	return 0
}

// MockRenderer is a mock implementation of Renderer
type MockRenderer struct {
	RenderFn func(ctx context.Context, req video.Request) (*video.Result, error)
	Requests []video.Request
}

func (m *MockRenderer) Render(ctx context.Context, req video.Request) (*video.Result, error) {
	m.Requests = append(m.Requests, req)
	if m.RenderFn != nil {
		return m.RenderFn(ctx, req)
	}
	return &video.Result{ID: "abcd1234", Path: "/tmp/out/share_abcd1234.mp4", Duration: 15}, nil
}

func completedTask() domain.Task {
	return domain.Task{
		ID:      "task-1",
		Status:  domain.TaskStatusCompleted,
		Message: domain.MessageDone,
		Config: &domain.SongConfig{
			Prompt:      "neon streets after rain",
			Style:       "synthwave",
			Title:       "Night Drive",
			VocalGender: domain.VocalGenderFemale,
			StyleWeight: 0.65,
		},
		JobID:        "job-1",
		ResultURL:    "https://cdn.example.com/song.mp3",
		PollAttempts: 3,
		Image:        pngBytes,
	}
}

type testServer struct {
	handler  http.Handler
	tasks    *MockTaskService
	renderer *MockRenderer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{tasks: &MockTaskService{}, renderer: &MockRenderer{}}
	ts.handler = NewRouter(RouterDeps{
		Tasks:         ts.tasks,
		Renderer:      ts.renderer,
		Models:        testModels,
		Configuration: ConfigurationStatus{GeminiConfigured: true, SunoConfigured: true},
		Version:       "test",
		MaxImageSize:  1024,
		VideoDir:      t.TempDir(),
		Logger:        testLogger(),
	})
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// multipartBody builds a form with an optional file part and extra fields.
func multipartBody(t *testing.T, field string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, target, field string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, field, data, fields)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	return req
}
