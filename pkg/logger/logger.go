// Package logger is the leveled logger used by every validate-assets
// component. Output goes to stderr so that stdout stays reserved for the
// FATAL ERROR lines and command output.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"
)

// Level represents the severity level of log messages
type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelStyles = [...]struct {
	name  string
	color string
}{
	TraceLevel: {"TRACE", "\033[37m"},
	DebugLevel: {"DEBUG", "\033[36m"},
	InfoLevel:  {"INFO", "\033[32m"},
	WarnLevel:  {"WARN", "\033[33m"},
	ErrorLevel: {"ERROR", "\033[31m"},
}

const colorReset = "\033[0m"

func (l Level) valid() bool {
	return l >= TraceLevel && l <= ErrorLevel
}

// String returns the string representation of the level
func (l Level) String() string {
	if !l.valid() {
		return "UNKNOWN"
	}
	return levelStyles[l].name
}

// ParseLevel maps a flag value to a Level; unknown values fall back to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config holds the logger configuration
type Config struct {
	Level     Level
	UseColor  bool
	JSON      bool
	Component string
	// Output defaults to os.Stderr
	Output io.Writer
	// Timestamps adds a time prefix in pretty mode
	Timestamps bool
}

// Logger writes one line per entry to its output.
type Logger struct {
	config Config
	out    io.Writer
}

// New builds a logger from config without installing it as the default.
func New(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{config: config, out: out}
}

var defaultLogger *Logger

// Initialize installs the package-level logger used by Info, Warn and friends.
func Initialize(config Config) error {
	if !config.Level.valid() {
		return fmt.Errorf("invalid log level %d", config.Level)
	}
	defaultLogger = New(config)
	return nil
}

// Log writes message at level. Debug and trace entries carry the caller.
func (l *Logger) Log(level Level, message string, fields ...Field) {
	l.emit(2, level, message, fields)
}

// emit skips that many frames to find the caller reported for debug entries.
func (l *Logger) emit(skip int, level Level, message string, fields []Field) {
	if level < l.config.Level {
		return
	}

	entry := LogEntry{
		Time:      time.Now(),
		Level:     level.String(),
		Message:   message,
		Component: l.config.Component,
		fields:    fields,
	}
	if level <= DebugLevel {
		if _, file, line, ok := runtime.Caller(skip); ok {
			entry.File = file
			entry.Line = line
		}
	}

	var line string
	if l.config.JSON {
		line = l.formatJSON(entry)
	} else {
		line = l.formatPretty(level, entry)
	}
	_, _ = io.WriteString(l.out, line+"\n")
}

func (l *Logger) formatJSON(entry LogEntry) string {
	if len(entry.fields) > 0 {
		entry.Fields = make(map[string]interface{}, len(entry.fields))
		for _, f := range entry.fields {
			entry.Fields[f.Key] = f.Value
		}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":%q,"message":%q}`, entry.Level, entry.Message)
	}
	return string(data)
}

// formatPretty renders "[LEVEL] component: message {k=v, ...} (file:line)".
// Fields keep the order the caller passed them in.
func (l *Logger) formatPretty(level Level, entry LogEntry) string {
	var b strings.Builder

	if l.config.Timestamps {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05 "))
	}

	b.WriteByte('[')
	if l.config.UseColor && level.valid() {
		b.WriteString(levelStyles[level].color + entry.Level + colorReset)
	} else {
		b.WriteString(entry.Level)
	}
	b.WriteByte(']')

	if entry.Component != "" {
		fmt.Fprintf(&b, " %s:", entry.Component)
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	if len(entry.fields) > 0 {
		b.WriteString(" {")
		for i, f := range entry.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", f.Key, f.Value)
		}
		b.WriteByte('}')
	}

	if entry.File != "" {
		fmt.Fprintf(&b, " (%s:%d)", entry.File, entry.Line)
	}
	return b.String()
}

// Field represents a structured field in a log entry
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a field rendered like time.Duration.String.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// LogEntry is the JSON shape of one log line.
type LogEntry struct {
	Time      time.Time              `json:"time"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`

	fields []Field
}

func logDefault(level Level, message string, fields []Field) {
	if defaultLogger != nil {
		defaultLogger.emit(3, level, message, fields)
		return
	}
	// Warnings and errors still surface before Initialize has run.
	if level >= WarnLevel {
		_, _ = fmt.Fprintf(os.Stderr, "[%s] validate-assets: %s\n", level, message)
	}
}

func Trace(message string, fields ...Field) { logDefault(TraceLevel, message, fields) }

func Debug(message string, fields ...Field) { logDefault(DebugLevel, message, fields) }

func Info(message string, fields ...Field) { logDefault(InfoLevel, message, fields) }

func Warn(message string, fields ...Field) { logDefault(WarnLevel, message, fields) }

func Error(message string, fields ...Field) { logDefault(ErrorLevel, message, fields) }

// SetOutput redirects the default logger.
func SetOutput(w io.Writer) {
	if defaultLogger != nil {
		defaultLogger.out = w
	}
}
