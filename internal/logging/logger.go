package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Level represents log level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// Options configures a Logger instance.
type Options struct {
	Level Level
	// Path of the rotated log file. Empty disables the file sink.
	Path       string
	MaxBytes   int64
	MaxBackups int
	// Console receives every entry in addition to the file sink.
	// Defaults to os.Stderr when nil.
	Console io.Writer
}

// Logger provides structured logging to a console stream and a
// size-rotated log file. One instance is built per process run and
// passed explicitly to every component.
type Logger struct {
	level   Level
	output  io.Writer
	rotator *rotatingFile
}

// Entry represents a structured log entry.
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// New creates a logger according to opts. The log file is created on
// first write and appended to across process runs.
func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	l := &Logger{level: opts.Level, output: console}
	if opts.Path != "" {
		rotator, err := newRotatingFile(opts.Path, opts.MaxBytes, opts.MaxBackups)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.rotator = rotator
		l.output = io.MultiWriter(console, rotator)
	}
	return l, nil
}

// NewTestLogger returns a logger writing to w only, for use in tests.
func NewTestLogger(w io.Writer) *Logger {
	return &Logger{level: LevelDebug, output: w}
}

// Close releases the file sink. The logger must not be used afterwards.
func (l *Logger) Close() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// log writes a structured log entry
func (l *Logger) log(level Level, message string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	entry := Entry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     levelNames[level],
		Message:   message,
		Fields:    fields,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		fmt.Fprintf(l.output, "[%s] %s: %s\n", entry.Timestamp, entry.Level, message)
		return
	}

	fmt.Fprintln(l.output, string(data))
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields map[string]interface{}) {
	l.log(LevelDebug, message, fields)
}

// Info logs an info message
func (l *Logger) Info(message string, fields map[string]interface{}) {
	l.log(LevelInfo, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields map[string]interface{}) {
	l.log(LevelWarn, message, fields)
}

// Error logs an error message
func (l *Logger) Error(message string, fields map[string]interface{}) {
	l.log(LevelError, message, fields)
}

// LogProbeResult logs the outcome of a single reachability probe.
func (l *Logger) LogProbeResult(host string, alive bool, exitCode int, err error) {
	fields := map[string]interface{}{
		"host":      host,
		"alive":     alive,
		"exit_code": exitCode,
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Error("probe could not run", fields)
		return
	}
	if alive {
		l.Info("host is up", fields)
	} else {
		l.Info("host is down", fields)
	}
}

// LogTaskResult logs the outcome of one sync task.
func (l *Logger) LogTaskResult(name string, exitCode int, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"task":      name,
		"exit_code": exitCode,
		"duration":  duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Error("task failed to run", fields)
		return
	}
	if exitCode == 0 {
		l.Info("task finished", fields)
	} else {
		l.Error("task finished with nonzero exit code", fields)
	}
}

// ParseLevel parses a log level string
func ParseLevel(levelStr string) Level {
	switch levelStr {
	case "DEBUG", "debug":
		return LevelDebug
	case "INFO", "info":
		return LevelInfo
	case "WARN", "warn", "WARNING", "warning":
		return LevelWarn
	case "ERROR", "error":
		return LevelError
	default:
		return LevelInfo
	}
}
