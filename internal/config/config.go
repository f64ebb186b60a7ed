package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm" validate:"required"`
	Suno   SunoConfig   `mapstructure:"suno" validate:"required"`
	Task   TaskConfig   `mapstructure:"task" validate:"required"`
	Video  VideoConfig  `mapstructure:"video" validate:"required"`
	App    AppConfig    `mapstructure:"app" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
}

// LLMConfig contains the image analysis settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	PromptPath        string `mapstructure:"prompt_path" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// SunoConfig contains the music generation service settings.
type SunoConfig struct {
	APIToken              string `mapstructure:"api_token" validate:"required"`
	APIURL                string `mapstructure:"api_url" validate:"required,url"`
	Model                 string `mapstructure:"model" validate:"required"`
	CallbackURL           string `mapstructure:"callback_url" validate:"omitempty,url"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// RequestTimeout returns the per-request HTTP timeout.
func (c SunoConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// TaskConfig controls the pipeline worker pool and the status poller.
type TaskConfig struct {
	WorkerCount            int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize              int `mapstructure:"queue_size" validate:"gt=0"`
	PollIntervalSeconds    int `mapstructure:"poll_interval_seconds" validate:"gt=0"`
	PollMaxAttempts        int `mapstructure:"poll_max_attempts" validate:"gt=0"`
	PipelineTimeoutSeconds int `mapstructure:"pipeline_timeout_seconds" validate:"gt=0"`
	RetentionMinutes       int `mapstructure:"retention_minutes" validate:"gte=0"`
}

// PollInterval returns the sleep between two status queries.
func (c TaskConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// PipelineTimeout returns the supervisory deadline of one pipeline execution.
func (c TaskConfig) PipelineTimeout() time.Duration {
	return time.Duration(c.PipelineTimeoutSeconds) * time.Second
}

// Retention returns how long finished tasks are kept. Zero keeps them forever.
func (c TaskConfig) Retention() time.Duration {
	return time.Duration(c.RetentionMinutes) * time.Minute
}

// VideoConfig controls share video rendering.
type VideoConfig struct {
	OutputDir              string `mapstructure:"output_dir" validate:"required"`
	FFmpegPath             string `mapstructure:"ffmpeg_path" validate:"required"`
	FFprobePath            string `mapstructure:"ffprobe_path" validate:"required"`
	Workers                int    `mapstructure:"workers" validate:"gt=0"`
	DefaultDurationSeconds int    `mapstructure:"default_duration_seconds" validate:"gte=1,lte=60"`
}

// AppConfig contains request limits and the deployment environment.
type AppConfig struct {
	MaxImageSize int64  `mapstructure:"max_image_size" validate:"gt=0"`
	Env          string `mapstructure:"env" validate:"required,oneof=development production test"`
}
