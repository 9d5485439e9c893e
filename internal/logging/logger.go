package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
)

// InitLogger installs a tinted stdout handler as the default logger.
func InitLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})

	slog.SetDefault(slog.New(handler))
}

// InitLoggerWithFiles installs the stdout handler plus two file handlers in
// logDir: a full log and an error-only log, both timestamped per run. The
// returned func closes the files.
func InitLoggerWithFiles(logDir string, verbose bool) (func(), error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	logPath := filepath.Join(logDir, "annotate_"+stamp+".log")
	errPath := filepath.Join(logDir, "errors_"+stamp+".log")

	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	errFile, err := os.Create(errPath)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("create error log file: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		tint.NewHandler(os.Stdout, &tint.Options{Level: level, TimeFormat: time.Kitchen}),
		slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}),
		slog.NewTextHandler(errFile, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	slog.SetDefault(slog.New(teeHandler(handlers)))

	slog.Info("[Logging] Writing run logs",
		slog.String("log_file", logPath),
		slog.String("error_file", errPath))

	return func() {
		logFile.Close()
		errFile.Close()
	}, nil
}

// teeHandler fans records out to every handler whose level accepts them.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(teeHandler, len(t))
	for i, h := range t {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	next := make(teeHandler, len(t))
	for i, h := range t {
		next[i] = h.WithGroup(name)
	}
	return next
}
