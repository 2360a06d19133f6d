package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/polkiloo/webpot/internal/config"
)

// New creates JSON slog.Logger tagged with service name.
func New(cfg *config.Config) *slog.Logger {
	level := ""
	if cfg != nil {
		level = cfg.LogLevel
	}
	return newWithWriter(os.Stdout, ParseLevel(level))
}

// NewTool creates JSON logger for command line tools writing to w.
func NewTool(w io.Writer, service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(handler).With(slog.String("service", service))
}

func newWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("service", "webpot"))
}

// ParseLevel maps textual level to slog level, falling back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
