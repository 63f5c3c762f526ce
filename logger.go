package coalesce

import (
	"fmt"
	"log"
	"os"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed information about submissions,
	// coalescing and flushes.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for messages that highlight batch progress.
	LogLevelInfo
	// LogLevelWarn is for recoverable per-item failures.
	LogLevelWarn
	// LogLevelError is for batch-wide failures.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger receives diagnostic messages from a Batcher. Implementations
// can route them to any destination. The Logger is optional; when none
// is configured, nothing is logged.
type Logger interface {
	// Debug logs a debug-level message, formatted as fmt.Sprintf.
	Debug(format string, args ...interface{})

	// Info logs an info-level message.
	Info(format string, args ...interface{})

	// Warn logs a warning-level message.
	Warn(format string, args ...interface{})

	// Error logs an error-level message.
	Error(format string, args ...interface{})
}

// NoOpLogger discards all log messages. It is the default logger when
// none is specified.
type NoOpLogger struct{}

// Debug implements the Logger interface.
func (n *NoOpLogger) Debug(format string, args ...interface{}) {}

// Info implements the Logger interface.
func (n *NoOpLogger) Info(format string, args ...interface{}) {}

// Warn implements the Logger interface.
func (n *NoOpLogger) Warn(format string, args ...interface{}) {}

// Error implements the Logger interface.
func (n *NoOpLogger) Error(format string, args ...interface{}) {}

// SimpleLogger writes Debug and Info messages to stdout and Warn and
// Error messages to stderr, each line prefixed with the level.
type SimpleLogger struct {
	// MinLevel is the minimum level to output. Lower levels are
	// discarded.
	MinLevel LogLevel

	// StdoutLogger handles Debug and Info messages.
	StdoutLogger *log.Logger

	// StderrLogger handles Warn and Error messages.
	StderrLogger *log.Logger
}

// NewSimpleLogger creates a SimpleLogger with the given minimum level,
// using standard log package formatting with timestamps.
func NewSimpleLogger(minLevel LogLevel) *SimpleLogger {
	return &SimpleLogger{
		MinLevel:     minLevel,
		StdoutLogger: log.New(os.Stdout, "", log.LstdFlags),
		StderrLogger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (s *SimpleLogger) write(level LogLevel, format string, args ...interface{}) {
	if level < s.MinLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	switch level {
	case LogLevelDebug, LogLevelInfo:
		s.StdoutLogger.Printf("[%s] %s", level, msg)
	default:
		s.StderrLogger.Printf("[%s] %s", level, msg)
	}
}

// Debug implements the Logger interface.
func (s *SimpleLogger) Debug(format string, args ...interface{}) {
	s.write(LogLevelDebug, format, args...)
}

// Info implements the Logger interface.
func (s *SimpleLogger) Info(format string, args ...interface{}) {
	s.write(LogLevelInfo, format, args...)
}

// Warn implements the Logger interface.
func (s *SimpleLogger) Warn(format string, args ...interface{}) {
	s.write(LogLevelWarn, format, args...)
}

// Error implements the Logger interface.
func (s *SimpleLogger) Error(format string, args ...interface{}) {
	s.write(LogLevelError, format, args...)
}
