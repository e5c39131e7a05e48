// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "tradejournal", "logs", "journal.log"),
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
// Console output goes to stderr so command output on stdout stays parseable.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LogConfig, console io.Writer) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File && cfg.FilePath != "" {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(writer).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ValidLevel reports whether level is a recognized level name.
func ValidLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// ContextKey is the type for context keys.
type ContextKey string

const (
	// LoggerKey is the context key for the logger.
	LoggerKey ContextKey = "logger"
	// RequestIDKey is the context key for request ID.
	RequestIDKey ContextKey = "request_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithOperation tags the logger with the journal operation being run.
func WithOperation(logger zerolog.Logger, operation string) zerolog.Logger {
	return logger.With().Str("operation", operation).Logger()
}

// WithStore adds a store backend name to the logger context.
func WithStore(logger zerolog.Logger, backend string) zerolog.Logger {
	return logger.With().Str("store", backend).Logger()
}

// LogTradeAdded logs a newly recorded trade.
func LogTradeAdded(logger zerolog.Logger, id int64, method, result string, r float64) {
	logger.Info().
		Str("event", "trade_added").
		Int64("trade_id", id).
		Str("method", method).
		Str("result", result).
		Float64("r", r).
		Msg("Trade recorded")
}

// LogTradeDeleted logs a trade removal. An id of zero means all trades.
func LogTradeDeleted(logger zerolog.Logger, id int64, count int) {
	logger.Info().
		Str("event", "trade_deleted").
		Int64("trade_id", id).
		Int("count", count).
		Msg("Trades deleted")
}

// LogPersistence logs a store read or write.
func LogPersistence(logger zerolog.Logger, operation string, records int, err error) {
	if err != nil {
		logger.Error().
			Str("event", "persistence").
			Str("action", operation).
			Int("records", records).
			Err(err).
			Msg("Persistence failed")
		return
	}
	logger.Debug().
		Str("event", "persistence").
		Str("action", operation).
		Int("records", records).
		Msg("Persistence completed")
}

// LogRequest logs a served API request.
func LogRequest(logger zerolog.Logger, method, path string, status int, duration time.Duration) {
	event := logger.Info()
	if status >= 500 {
		event = logger.Error()
	} else if status >= 400 {
		event = logger.Warn()
	}
	event.
		Str("event", "request").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration", duration).
		Msg("Request served")
}
