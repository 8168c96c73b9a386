// Package logger builds the JSON slog.Logger every service's main.go
// starts with, tagged with its own service name. Every one of this
// core's services logs the same way regardless of broker role
// (publisher-only, consumer-only, or both), so this stays a thin,
// domain-free wrapper around log/slog rather than something each
// service adapts on its own.
package logger

import (
	"log/slog"
	"os"
)

// NewLogger creates a new structured logger with JSON format
func NewLogger(serviceName string) *slog.Logger {
	// Get log level from environment (default: INFO)
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler)

	// Add service name to all log entries
	return logger.With(slog.String("service", serviceName))
}

func getLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
