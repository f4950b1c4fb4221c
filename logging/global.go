// Package logging wraps log/slog with a console plus rotating file setup
// and an HTTP request logging middleware.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingLogger
}

var DefaultLoggingService *LoggingService

// Options configures the global logger
type Options struct {
	Dir            string // empty disables file logging
	Level          string
	RetentionWeeks int
	MaxFileSize    int64
}

// InitLogger initializes the global logger at info level
func InitLogger(logDir string) {
	InitLoggerWithOptions(Options{Dir: logDir, Level: "info", RetentionWeeks: 4})
}

// InitLoggerWithOptions initializes the global logger and makes it the slog default
func InitLoggerWithOptions(opts Options) {
	if DefaultLoggingService != nil && DefaultLoggingService.file != nil {
		_ = DefaultLoggingService.file.Close()
	}

	logger, file := newLogger(opts)
	DefaultLoggingService = &LoggingService{Logger: logger, file: file}
	slog.SetDefault(logger)
}

// Close releases the log file of the global logger, if any
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.file == nil {
		return nil
	}
	err := DefaultLoggingService.file.Close()
	DefaultLoggingService.file = nil
	return err
}

// ParseLevel converts a LOG_LEVEL value to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// current returns the global logger or a console fallback if not initialized
func current(level slog.Level) *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return DefaultLoggingService.Logger
}

// Logger returns the global logger, or an info level console logger
// before InitLogger has run
func Logger() *slog.Logger {
	return current(slog.LevelInfo)
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	current(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current(slog.LevelDebug).Debug(msg, args...)
}
