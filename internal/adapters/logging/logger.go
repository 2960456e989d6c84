// Package logging provides structured JSON logging for the compiler
// driver. All logs go to stderr so stdout stays free for generated
// source when a subcommand writes to it.
package logging

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"time"

	"github.com/aie-tools/aiec/internal/core/usecases"
)

var _ usecases.Logger = (*Logger)(nil)

// Level represents a log level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Logger provides structured JSON logging over the operational channel
// (distinct from diagnostics.Sink, the user-facing compiler-diagnostics
// channel).
type Logger struct {
	level Level
}

// New creates a new logger with the given level.
func New(level Level) *Logger {
	return &Logger{level: level}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	if l.level != LevelDebug {
		return
	}
	l.log(LevelDebug, msg, keysAndValues)
}

// Info logs an info message.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.log(LevelInfo, msg, keysAndValues)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.log(LevelWarn, msg, keysAndValues)
}

// Error logs an error message.
func (l *Logger) Error(msg string, err error, keysAndValues ...any) {
	fields := parseKeysAndValues(keysAndValues)
	if err != nil {
		fields["error"] = err.Error()
	}
	l.logWithFields(LevelError, msg, fields)
}

func (l *Logger) log(level Level, message string, keysAndValues []any) {
	l.logWithFields(level, message, parseKeysAndValues(keysAndValues))
}

func (l *Logger) logWithFields(level Level, message string, fields map[string]any) {
	entry := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     level,
		"message":   message,
	}
	maps.Copy(entry, fields)

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, `{"error":"failed to marshal log entry: %v"}`+"\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s\n", string(data))
}

func parseKeysAndValues(keysAndValues []any) map[string]any {
	fields := make(map[string]any)
	mergeKeysAndValues(fields, keysAndValues)
	return fields
}

func mergeKeysAndValues(fields map[string]any, keysAndValues []any) {
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
}

var global = New(LevelInfo)

// SetLevel sets the global log level.
func SetLevel(level Level) { global.level = level }

// GetLogger returns the global logger.
func GetLogger() *Logger { return global }
