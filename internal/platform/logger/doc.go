// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package with a JSON handler for
// production and a colored tint handler for local development, and carries
// request- or task-scoped loggers through a context.Context.
package logger
