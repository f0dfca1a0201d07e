package logger

import (
	"log/slog"
	"os"

	"github.com/narralabs/narramancer/internal/config"
)

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		// JSON format for production
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Text format for development
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// WithSession adds the session id to logger context
func WithSession(log *slog.Logger, sessionID string) *slog.Logger {
	return log.With("session_id", sessionID)
}
