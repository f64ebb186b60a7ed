package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// EncodeSpec describes one encoding run.
type EncodeSpec struct {
	Output     string
	AudioPath  string
	AudioStart float64
	AudioEnd   float64
	Width      int
	Height     int
	FPS        int
	Frames     int
}

// Encoder muxes a raw RGBA frame stream with an audio excerpt.
type Encoder interface {
	// ProbeDuration returns the length of the audio file in seconds.
	ProbeDuration(ctx context.Context, path string) (float64, error)

	// Encode reads spec.Frames frames of Width*Height*4 bytes from frames and
	// writes the finished video to spec.Output.
	Encode(ctx context.Context, spec EncodeSpec, frames io.Reader) error
}

// FFmpegEncoder shells out to ffmpeg and ffprobe.
type FFmpegEncoder struct {
	ffmpeg  string
	ffprobe string
}

var _ Encoder = (*FFmpegEncoder)(nil)

// NewFFmpegEncoder creates an encoder using the given binaries.
func NewFFmpegEncoder(ffmpegPath, ffprobePath string) *FFmpegEncoder {
	return &FFmpegEncoder{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// ProbeDuration reads the container duration with ffprobe.
func (e *FFmpegEncoder) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, &EncodeError{Stage: "probe", Output: tail(out), Err: err}
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, &EncodeError{Stage: "probe", Output: tail(out), Err: fmt.Errorf("parse duration: %w", err)}
	}
	return d, nil
}

// Encode runs ffmpeg with frames on stdin.
func (e *FFmpegEncoder) Encode(ctx context.Context, spec EncodeSpec, frames io.Reader) error {
	if _, err := exec.LookPath(e.ffmpeg); err != nil {
		return &EncodeError{Stage: "encode", Err: fmt.Errorf("ffmpeg not found: %w", err)}
	}

	cmd := exec.CommandContext(ctx, e.ffmpeg, ffmpegArgs(spec)...)
	cmd.Stdin = frames
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &EncodeError{Stage: "encode", Output: tail(stderr.Bytes()), Err: err}
	}
	return nil
}

// ffmpegArgs builds the command line: raw RGBA video on stdin, the audio
// excerpt from the downloaded file, H.264 + AAC out.
func ffmpegArgs(spec EncodeSpec) []string {
	length := spec.AudioEnd - spec.AudioStart
	videoLength := float64(spec.Frames) / float64(spec.FPS)

	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-r", strconv.Itoa(spec.FPS),
		"-i", "pipe:0",
		"-ss", formatSeconds(spec.AudioStart),
		"-t", formatSeconds(length),
		"-i", spec.AudioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-t", formatSeconds(videoLength),
		"-movflags", "+faststart",
		spec.Output,
	}
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

// tail keeps the end of process output, where ffmpeg puts the error.
func tail(out []byte) string {
	const max = 512
	s := strings.TrimSpace(string(out))
	if len(s) > max {
		s = s[len(s)-max:]
	}
	return s
}
