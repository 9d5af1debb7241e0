package util

import (
	"fmt"
	"log"
	"maps"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Field is a key-value pair attached to a log entry
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// LogFormat represents the output format
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// Output is a log destination
type Output interface {
	Write(entry LogEntry) error
	Close() error
}

// LogEntry is a single log record
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LoggerInterface is what packages log through
type LoggerInterface interface {
	Debug(msg string, fields ...Field)
	Debugf(format string, args ...any)
	Info(msg string, fields ...Field)
	Infof(format string, args ...any)
	Warn(msg string, fields ...Field)
	Warnf(format string, args ...any)
	Error(msg string, fields ...Field)
	Errorf(format string, args ...any)
	With(fields ...Field) LoggerInterface
	Named(component string) LoggerInterface
	SetLevel(level LogLevel)
	AddOutput(output Output)
	Close() error
}

// Logger writes structured entries to every registered output
type Logger struct {
	core      *loggerCore
	component string
	fields    map[string]any
}

// loggerCore is shared by a logger and every child derived from it.
type loggerCore struct {
	mu      sync.RWMutex
	level   LogLevel
	outputs []Output
}

// NewLogger creates a logger writing text entries to logFile and, when
// debugToConsole is set, to stderr. With neither, entries are discarded.
func NewLogger(levelStr string, logFile string, debugToConsole bool) (*Logger, error) {
	logger := &Logger{
		core:   &loggerCore{level: ParseLogLevel(levelStr)},
		fields: make(map[string]any),
	}

	if debugToConsole {
		logger.AddOutput(NewConsoleOutput(os.Stderr, FormatText))
	}

	if logFile != "" {
		fileOutput, err := NewFileOutput(logFile, FormatText)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		logger.AddOutput(fileOutput)
	}

	return logger, nil
}

// ParseLogLevel parses a level name, defaulting to info
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l *Logger) log(level LogLevel, msg string, fields ...Field) {
	l.core.mu.RLock()
	defer l.core.mu.RUnlock()

	if l.core.level > level || len(l.core.outputs) == 0 {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
		Fields:    make(map[string]any, len(l.fields)+len(fields)),
	}
	maps.Copy(entry.Fields, l.fields)
	for _, field := range fields {
		entry.Fields[field.Key] = field.Value
	}

	for _, output := range l.core.outputs {
		if err := output.Write(entry); err != nil {
			log.Printf("Failed to write log entry: %v", err)
		}
	}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields...) }

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, fmt.Sprintf(format, args...)) }

// With returns a child logger carrying additional fields
func (l *Logger) With(fields ...Field) LoggerInterface {
	child := &Logger{
		core:      l.core,
		component: l.component,
		fields:    maps.Clone(l.fields),
	}
	if child.fields == nil {
		child.fields = make(map[string]any, len(fields))
	}
	for _, field := range fields {
		child.fields[field.Key] = field.Value
	}
	return child
}

// Named returns a child logger tagged with a component name
func (l *Logger) Named(component string) LoggerInterface {
	return &Logger{
		core:      l.core,
		component: component,
		fields:    maps.Clone(l.fields),
	}
}

// SetLevel changes the level of this logger and all of its children
func (l *Logger) SetLevel(level LogLevel) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.level = level
}

// AddOutput adds a new output destination
func (l *Logger) AddOutput(output Output) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.outputs = append(l.core.outputs, output)
}

// Close closes every output
func (l *Logger) Close() error {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	var first error
	for _, output := range l.core.outputs {
		if err := output.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.core.outputs = nil
	return first
}
