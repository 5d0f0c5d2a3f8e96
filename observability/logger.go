package observability

import (
	"log/slog"
	"os"
)

// Logger is the global logger instance
var Logger *slog.Logger

// InitLogger initializes the global logger with the appropriate handler.
// Production uses JSON format; development uses text format.
func InitLogger(production bool) {
	InitLoggerWithLevel(production, slog.LevelInfo)
}

// InitLoggerWithLevel initializes the logger with a specific log level
func InitLoggerWithLevel(production bool, level slog.Level) {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// Info logs an info message
func Info(msg string, args ...any) {
	if Logger == nil {
		InitLogger(false)
	}
	Logger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	if Logger == nil {
		InitLogger(false)
	}
	Logger.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	if Logger == nil {
		InitLogger(false)
	}
	Logger.Error(msg, args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	if Logger == nil {
		InitLogger(false)
	}
	Logger.Debug(msg, args...)
}

// Fatal logs an error message and exits
func Fatal(msg string, args ...any) {
	if Logger == nil {
		InitLogger(false)
	}
	Logger.Error(msg, args...)
	os.Exit(1)
}

// WithSymbol returns a logger with symbol field
func WithSymbol(symbol string) *slog.Logger {
	if Logger == nil {
		InitLogger(false)
	}
	return Logger.With("symbol", symbol)
}

// WithAgent returns a logger with agent name field
func WithAgent(agent string) *slog.Logger {
	if Logger == nil {
		InitLogger(false)
	}
	return Logger.With("agent", agent)
}

// WithRequestID returns a logger with request ID field
func WithRequestID(requestID string) *slog.Logger {
	if Logger == nil {
		InitLogger(false)
	}
	return Logger.With("request_id", requestID)
}
