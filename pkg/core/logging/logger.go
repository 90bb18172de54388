// File: logger.go
// Title: Core Logger Implementation
// Description: Implements the structured logger used by all chainterm
//              components. Loggers carry a name and a set of context fields
//              that are attached to every entry they emit.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-02-10
// Modified: 2026-02-10
//
// Change History:
// - 2026-02-10 v0.1.0: Initial implementation

package logging

import (
	"io"
	"os"
	"sync"
	"time"
)

// Fields represents custom key-value pairs for structured logging
type Fields map[string]interface{}

// Entry represents a single log entry with all its metadata
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Logger    string
	Fields    Fields
	Error     error
}

// Logger represents a structured logger with contextual information
type Logger struct {
	level     Level
	formatter Formatter
	output    io.Writer
	name      string

	// Context fields added to all entries emitted by this logger
	contextFields Fields

	mutex sync.RWMutex
}

// Config represents logger configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
	Name   string
}

var (
	defaultLogger *Logger
	defaultOnce   sync.Once
)

// New creates a new logger with the given name and default configuration
func New(name string) *Logger {
	return NewWithConfig(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: os.Stdout,
		Name:   name,
	})
}

// NewWithConfig creates a new logger with the specified configuration
func NewWithConfig(config Config) *Logger {
	logger := &Logger{
		level:         config.Level,
		formatter:     GetFormatter(config.Format),
		output:        config.Output,
		name:          config.Name,
		contextFields: make(Fields),
	}

	if logger.output == nil {
		logger.output = os.Stdout
	}

	return logger
}

// GetDefault returns the process-wide default logger
func GetDefault() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New("chainterm")
	})
	return defaultLogger
}

// WithField returns a new logger with an additional context field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Fields{key: value})
}

// WithFields returns a new logger with additional context fields
func (l *Logger) WithFields(fields Fields) *Logger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	clone := l.clone()
	for key, value := range fields {
		clone.contextFields[key] = value
	}
	return clone
}

// WithName returns a new logger with the given name
func (l *Logger) WithName(name string) *Logger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	clone := l.clone()
	clone.name = name
	return clone
}

// SetLevel changes the minimum log level
func (l *Logger) SetLevel(level Level) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.level = level
}

// GetLevel returns the current minimum log level
func (l *Logger) GetLevel() Level {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.level
}

// SetOutput changes the output destination
func (l *Logger) SetOutput(output io.Writer) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.output = output
}

// Debug logs a message at debug level
func (l *Logger) Debug(message string, fields ...Fields) {
	l.log(LevelDebug, message, nil, fields...)
}

// Info logs a message at info level
func (l *Logger) Info(message string, fields ...Fields) {
	l.log(LevelInfo, message, nil, fields...)
}

// Warn logs a message at warn level
func (l *Logger) Warn(message string, fields ...Fields) {
	l.log(LevelWarn, message, nil, fields...)
}

// Error logs a message at error level
func (l *Logger) Error(message string, fields ...Fields) {
	l.log(LevelError, message, nil, fields...)
}

// ErrorWithErr logs a message at error level with an attached error
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, err, fields...)
}

// WarnWithErr logs a message at warn level with an attached error
func (l *Logger) WarnWithErr(message string, err error, fields ...Fields) {
	l.log(LevelWarn, message, err, fields...)
}

// IsLevelEnabled reports whether the given level would be logged
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return level >= l.level
}

// log creates and writes a log entry
func (l *Logger) log(level Level, message string, err error, fields ...Fields) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if level < l.level {
		return
	}

	entry := &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Logger:    l.name,
		Error:     err,
		Fields:    make(Fields, len(l.contextFields)),
	}

	for key, value := range l.contextFields {
		entry.Fields[key] = value
	}
	for _, f := range fields {
		for key, value := range f {
			entry.Fields[key] = value
		}
	}

	formatted, ferr := l.formatter.Format(entry)
	if ferr != nil {
		return
	}

	l.output.Write(formatted)
}

// clone creates a copy of the logger (caller must hold the read lock)
func (l *Logger) clone() *Logger {
	contextFields := make(Fields, len(l.contextFields))
	for key, value := range l.contextFields {
		contextFields[key] = value
	}

	return &Logger{
		level:         l.level,
		formatter:     l.formatter,
		output:        l.output,
		name:          l.name,
		contextFields: contextFields,
	}
}
