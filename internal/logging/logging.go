// Package logging builds the slog logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// New returns a text-format slog logger writing to a dated file under
// logsDir and, when stderrToo is set, mirrored to stderr. When the log file
// cannot be created the logger degrades to stderr only.
func New(logsDir, level string, stderrToo bool) *slog.Logger {
	var writers []io.Writer

	if logsDir != "" {
		if err := os.MkdirAll(logsDir, 0755); err == nil {
			name := fmt.Sprintf("search_%s.log", time.Now().Format("20060102"))
			f, err := os.OpenFile(filepath.Join(logsDir, name),
				os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err == nil {
				writers = append(writers, f)
			}
		}
	}
	if stderrToo || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// ParseLevel maps a config level string to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "warning", "WARN", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything; used by tests and as a
// fallback when callers pass a nil logger.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
