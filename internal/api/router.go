package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/melodysnap-api/internal/api/middleware"
	"github.com/phrazzld/melodysnap-api/internal/api/shared"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// VideoURLPrefix is where rendered share videos are served.
const VideoURLPrefix = "/videos"

// RouterDeps holds everything the HTTP surface needs.
type RouterDeps struct {
	Tasks         TaskService
	Renderer      Renderer
	Models        ModelInfo
	Configuration ConfigurationStatus
	Version       string
	MaxImageSize  int64
	// VideoDir is the directory rendered videos are written to.
	VideoDir string
	Logger   *slog.Logger
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{shared.TraceHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.NewTraceMiddleware(d.Logger))
	r.Use(middleware.RequestLogger(d.Logger))

	taskHandler := NewTaskHandler(d.Tasks, d.Models, d.MaxImageSize, d.Logger)
	videoHandler := NewVideoHandler(d.Tasks, d.Renderer, d.MaxImageSize, VideoURLPrefix, d.Logger)
	systemHandler := NewSystemHandler(d.Tasks, d.Models, d.Configuration, d.Version)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-music", taskHandler.GenerateMusic)

		r.Get("/task/{id}", taskHandler.GetTask)
		r.Delete("/task/{id}", taskHandler.DeleteTask)
		r.Post("/task/{id}/share-video", videoHandler.ShareVideo)
	})

	r.Handle(VideoURLPrefix+"/*",
		http.StripPrefix(VideoURLPrefix+"/", http.FileServer(http.Dir(d.VideoDir))))

	r.Get("/health", systemHandler.Health)
	r.Get("/", systemHandler.Root)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
