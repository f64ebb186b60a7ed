package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/phrazzld/melodysnap-api/internal/config"
	"github.com/phrazzld/melodysnap-api/internal/metrics"
	"github.com/phrazzld/melodysnap-api/internal/redact"
	"golang.org/x/sync/errgroup"
)

const (
	minDuration = 1
	maxDuration = 60

	downloadTimeout = 60 * time.Second
)

// Request is one share video to render.
type Request struct {
	// Image is the still picture, usually a screenshot of the song card.
	Image []byte
	// AudioURL points at the generated song.
	AudioURL string
	Title    string
	// Duration in seconds. Zero selects the configured default.
	Duration int
}

// Result describes a rendered video.
type Result struct {
	ID       string
	Path     string
	Duration int
}

// Renderer produces share videos under the configured output directory.
type Renderer struct {
	cfg        config.VideoConfig
	httpClient *http.Client
	encoder    Encoder
	logger     *slog.Logger

	width, height, fps int
	maxZoom            float64
}

// NewRenderer creates a Renderer. A nil httpClient gets a pooled client and
// a nil encoder gets ffmpeg from cfg.
func NewRenderer(cfg config.VideoConfig, httpClient *http.Client, encoder Encoder, logger *slog.Logger) *Renderer {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = downloadTimeout
	}
	if encoder == nil {
		encoder = NewFFmpegEncoder(cfg.FFmpegPath, cfg.FFprobePath)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DefaultDurationSeconds <= 0 {
		cfg.DefaultDurationSeconds = 15
	}
	return &Renderer{
		cfg:        cfg,
		httpClient: httpClient,
		encoder:    encoder,
		logger:     logger.With("component", "video_renderer"),
		width:      Width,
		height:     Height,
		fps:        FPS,
		maxZoom:    DefaultMaxZoom,
	}
}

// OutputDir is where rendered files are written.
func (r *Renderer) OutputDir() string {
	return r.cfg.OutputDir
}

// Render produces a share video and returns its location. The scratch
// directory is always removed, and so is a partial output file.
func (r *Renderer) Render(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRender(outcome(err), time.Since(start).Seconds())
	}()

	duration := req.Duration
	if duration == 0 {
		duration = r.cfg.DefaultDurationSeconds
	}
	if duration < minDuration || duration > maxDuration {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}

	logger := r.logger.With("title", req.Title, "duration", duration)

	canvas, err := canonicalize(req.Image, r.width, r.height)
	if err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp("", "melodysnap-render-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	audioPath := filepath.Join(scratch, "audio.mp3")
	size, err := r.download(ctx, req.AudioURL, audioPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("audio downloaded", "bytes", size)

	audioLen, err := r.encoder.ProbeDuration(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	audioStart, audioEnd := AlignAudio(audioLen, float64(duration))

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	id := "share_" + uuid.New().String()[:8]
	output := filepath.Join(r.cfg.OutputDir, id+".mp4")

	spec := EncodeSpec{
		Output:     output,
		AudioPath:  audioPath,
		AudioStart: audioStart,
		AudioEnd:   audioEnd,
		Width:      r.width,
		Height:     r.height,
		FPS:        r.fps,
		Frames:     duration * r.fps,
	}
	if err := r.encode(ctx, canvas, float64(duration), spec); err != nil {
		if rmErr := os.Remove(output); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warn("failed to remove partial video", "path", output, "error", rmErr)
		}
		return nil, err
	}

	logger.Info("share video rendered",
		"video_id", id,
		"audio_start", audioStart,
		"audio_end", audioEnd,
		"elapsed", time.Since(start))
	return &Result{ID: id, Path: output, Duration: duration}, nil
}

func (r *Renderer) download(ctx context.Context, url, dst string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &DownloadError{URL: url, Err: err}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, &DownloadError{URL: url, Err: errors.New(redact.Error(err))}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	f, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create audio file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return n, &DownloadError{URL: url, Err: err}
	}
	return n, nil
}

// encode streams frames into the encoder through a pipe.
func (r *Renderer) encode(ctx context.Context, canvas *image.NRGBA, duration float64, spec EncodeSpec) error {
	pr, pw := io.Pipe()

	var encErr error
	var g errgroup.Group
	g.Go(func() error {
		err := r.writeFrames(ctx, canvas, duration, spec.Frames, pw)
		pw.CloseWithError(err)
		if errors.Is(err, errEncoderDone) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		encErr = r.encoder.Encode(ctx, spec, pr)
		pr.CloseWithError(errEncoderDone)
		return nil
	})
	writeErr := g.Wait()

	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("render cancelled: %w", ctx.Err())
	case encErr != nil:
		var ee *EncodeError
		if errors.As(encErr, &ee) {
			return encErr
		}
		return &EncodeError{Stage: "encode", Err: encErr}
	case writeErr != nil:
		return fmt.Errorf("failed to stream frames: %w", writeErr)
	}
	return nil
}

// errEncoderDone unblocks the frame writer once the encoder has returned.
var errEncoderDone = errors.New("encoder finished")

// writeFrames computes frames in windows of cfg.Workers, in parallel within a
// window, and writes each window in order.
func (r *Renderer) writeFrames(ctx context.Context, canvas *image.NRGBA, duration float64, total int, w io.Writer) error {
	window := r.cfg.Workers
	buf := make([]*image.NRGBA, window)

	for first := 0; first < total; first += window {
		n := min(window, total-first)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.cfg.Workers)
		for i := 0; i < n; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				t := float64(first+i) / float64(r.fps)
				buf[i] = Frame(canvas, t, duration, r.maxZoom)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i := 0; i < n; i++ {
			if err := writeRGBA(w, buf[i]); err != nil {
				return err
			}
			buf[i] = nil
		}
	}
	return nil
}

func writeRGBA(w io.Writer, img *image.NRGBA) error {
	rowLen := img.Rect.Dx() * 4
	if img.Stride == rowLen {
		_, err := w.Write(img.Pix[:rowLen*img.Rect.Dy()])
		return err
	}
	for y := 0; y < img.Rect.Dy(); y++ {
		off := y * img.Stride
		if _, err := w.Write(img.Pix[off : off+rowLen]); err != nil {
			return err
		}
	}
	return nil
}

func outcome(err error) string {
	var (
		de  *DownloadError
		dec *DecodeError
		ee  *EncodeError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &de):
		return "download_error"
	case errors.As(err, &dec):
		return "decode_error"
	case errors.As(err, &ee):
		return "encode_error"
	case errors.Is(err, ErrInvalidDuration):
		return "invalid_request"
	default:
		return "error"
	}
}
