package slogx

import (
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler and the identity attributes stamped on every
// record. The pipeline services log JSON in production so the delivery
// and dead-letter events can be queried per tenant; "text" is for local
// runs against a dev broker.
type Config struct {
	Service string
	Version string
	Env     string // "dev" enables source locations
	Level   string // "debug", "info", "warn", "error"; empty means info
	Format  string // "json" (default) or "text"
}

// New builds the process logger and installs it as the slog default, so
// libraries that log through slog inherit the same handler as the
// pipeline's own components.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
