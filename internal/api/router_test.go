package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/melodysnap-api/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	ts.tasks.CountFn = func() int { return 7 }

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 7, resp.TasksCount)
	assert.Equal(t, testModels, resp.Models)
	assert.True(t, resp.Configuration.GeminiConfigured)
	assert.True(t, resp.Configuration.SunoConfigured)
}

func TestRoot(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ServiceInfoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "MelodySnap API", resp.Service)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "/health", resp.Health)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "melodysnap_http_requests_total")
}

func TestTraceHeader(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, shared.IsValidTraceID(rec.Header().Get(shared.TraceHeader)))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(shared.TraceHeader, "client-trace-0001")
	rec = ts.do(req)
	assert.Equal(t, "client-trace-0001", rec.Header().Get(shared.TraceHeader))
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-music", nil)
	req.Header.Set("Origin", "https://melodysnap.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := ts.do(req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServesRenderedVideos(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "share_abcd1234.mp4"), []byte("mp4 bytes"), 0o644))
	handler := NewRouter(RouterDeps{
		Tasks:        &MockTaskService{},
		Renderer:     &MockRenderer{},
		MaxImageSize: 1024,
		VideoDir:     dir,
		Logger:       testLogger(),
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/share_abcd1234.mp4", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "mp4 bytes", string(body))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/missing.mp4", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
