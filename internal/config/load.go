package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the service reads.
const EnvPrefix = "MELODY"

// Default values for settings that are not required to be set explicitly.
const (
	DefaultPort         = 8000
	DefaultGeminiModel  = "gemini-3-flash-preview"
	DefaultSunoModel    = "V5"
	DefaultSunoURL      = "https://api.sunoapi.org/api/v1/generate"
	DefaultPromptPath   = "prompts/system_prompt.txt"
	DefaultMaxImageSize = 10 * 1024 * 1024
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")

	v.SetDefault("llm.model_name", DefaultGeminiModel)
	v.SetDefault("llm.prompt_path", DefaultPromptPath)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("suno.api_url", DefaultSunoURL)
	v.SetDefault("suno.model", DefaultSunoModel)
	v.SetDefault("suno.callback_url", "")
	v.SetDefault("suno.request_timeout_seconds", 30)

	v.SetDefault("task.worker_count", 4)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.poll_interval_seconds", 5)
	v.SetDefault("task.poll_max_attempts", 60)
	v.SetDefault("task.pipeline_timeout_seconds", 360)
	v.SetDefault("task.retention_minutes", 60)

	v.SetDefault("video.output_dir", "generated_videos")
	v.SetDefault("video.ffmpeg_path", "ffmpeg")
	v.SetDefault("video.ffprobe_path", "ffprobe")
	v.SetDefault("video.workers", 4)
	v.SetDefault("video.default_duration_seconds", 15)

	v.SetDefault("app.max_image_size", DefaultMaxImageSize)
	v.SetDefault("app.env", "development")
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first when present.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path looks
// for config.yaml in the working directory.
func LoadFile(path string) (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{"llm.gemini_api_key", "suno.api_token"} {
		envVar := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of a populated configuration.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
