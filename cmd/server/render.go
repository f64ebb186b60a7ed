package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/phrazzld/melodysnap-api/internal/config"
	"github.com/phrazzld/melodysnap-api/internal/platform/logger"
	"github.com/phrazzld/melodysnap-api/internal/video"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	imagePath   string
	audioURL    string
	title       string
	duration    int
	outputDir   string
	ffmpegPath  string
	ffprobePath string
	workers     int
	logLevel    string
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a share video from a local image and a song URL",
		Long: `Render a vertical share video locally and print the path of the file.

Uses the same renderer as POST /api/task/{id}/share-video, without the server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.imagePath, "image", "", "path of the still image")
	f.StringVar(&opts.audioURL, "audio-url", "", "URL of the song audio")
	f.StringVar(&opts.title, "title", "", "song title, used for logging")
	f.IntVar(&opts.duration, "duration", 15, "video length in seconds (1-60)")
	f.StringVar(&opts.outputDir, "output-dir", "generated_videos", "directory for rendered files")
	f.StringVar(&opts.ffmpegPath, "ffmpeg", "ffmpeg", "ffmpeg binary")
	f.StringVar(&opts.ffprobePath, "ffprobe", "ffprobe", "ffprobe binary")
	f.IntVar(&opts.workers, "workers", 4, "parallel frame workers")
	f.StringVar(&opts.logLevel, "log-level", "info", "debug | info | warn | error")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("audio-url")

	return cmd
}

func runRender(cmd *cobra.Command, opts renderOptions) error {
	if opts.workers <= 0 {
		return errors.New("--workers must be positive")
	}

	image, err := os.ReadFile(opts.imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	log := logger.New(cmd.ErrOrStderr(), config.ServerConfig{
		LogLevel:  opts.logLevel,
		LogFormat: "text",
	})

	renderer := video.NewRenderer(config.VideoConfig{
		OutputDir:              opts.outputDir,
		FFmpegPath:             opts.ffmpegPath,
		FFprobePath:            opts.ffprobePath,
		Workers:                opts.workers,
		DefaultDurationSeconds: opts.duration,
	}, nil, nil, log)

	res, err := renderer.Render(cmd.Context(), video.Request{
		Image:    image,
		AudioURL: opts.audioURL,
		Title:    opts.title,
		Duration: opts.duration,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}
