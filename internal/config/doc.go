// Package config handles configuration loading, parsing, and validation
// from environment variables (MELODY_ prefix), an optional .env file, and an
// optional config.yaml. It provides type-safe access to the settings of the
// HTTP server, the Gemini and Suno clients, the task pipeline, and the video
// renderer.
package config
