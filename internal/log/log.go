// Package log provides structured logging for ssm-commander.
// Records are written as JSON lines with credentials redacted from every value.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/runger/ssm-commander/internal/sanitize"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
	}
}

// New creates a JSON-lines structured logger:
//
//	{"ts":"2024-01-15T10:30:00Z","level":"INFO","msg":"session finished","command":"db","exit_code":0}
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Key = "ts"
				return a
			}
			return sanitize.DefaultSanitizer.Attr(a)
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts debug, info, warn or error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// OpenFile opens path for appending, creating its directory when needed.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// LogSessionStart logs the start of a session command.
func LogSessionStart(logger *slog.Logger, name, runID, line string) {
	logger.Info("session started", "command", name, "run_id", runID, "line", line)
}

// LogSessionEnd logs the exit of a session command.
func LogSessionEnd(logger *slog.Logger, name, runID string, exitCode int) {
	logger.Info("session finished", "command", name, "run_id", runID, "exit_code", exitCode)
}

// LogHistoryError logs a failure to record run history. History is best-effort.
func LogHistoryError(logger *slog.Logger, operation string, err error) {
	logger.Warn("history unavailable", "operation", operation, "error", err)
}
