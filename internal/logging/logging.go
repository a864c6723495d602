// Package logging provides a simple leveled logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// timeNow is swapped in tests for stable timestamps.
var timeNow = time.Now

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	levelNone
)

func (l Level) String() string {
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

// ParseLevel parses a log level string. Unknown values map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) filter() level.Option {
	switch l {
	case LevelDebug:
		return level.AllowDebug()
	case LevelInfo:
		return level.AllowInfo()
	case LevelWarn:
		return level.AllowWarn()
	case LevelError:
		return level.AllowError()
	default:
		return level.AllowNone()
	}
}

// Logger is a leveled logfmt logger.
type Logger struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
	ctx    []interface{}
	kit    kitlog.Logger
}

// New creates a new logger writing to stderr.
func New(level Level) *Logger {
	l := &Logger{
		level:  level,
		output: kitlog.NewSyncWriter(os.Stderr),
	}
	l.rebuild()
	return l
}

// rebuild must be called with mu held (or before the logger is shared).
func (l *Logger) rebuild() {
	base := kitlog.NewLogfmtLogger(l.output)
	base = kitlog.With(base, "ts", kitlog.TimestampFormat(func() time.Time { return timeNow() }, "15:04:05.000"))
	if len(l.ctx) > 0 {
		base = kitlog.With(base, l.ctx...)
	}
	l.kit = level.NewFilter(base, l.level.filter())
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = kitlog.NewSyncWriter(w)
	l.rebuild()
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.rebuild()
}

// With returns a child logger that adds keyvals to every line.
// The child copies the parent's level and shares its output.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx := make([]interface{}, 0, len(l.ctx)+len(keyvals))
	ctx = append(ctx, l.ctx...)
	ctx = append(ctx, keyvals...)
	child := &Logger{
		level:  l.level,
		output: l.output,
		ctx:    ctx,
	}
	child.rebuild()
	return child
}

func (l *Logger) log(lvl Level, format string, args ...interface{}) {
	l.mu.Lock()
	kit := l.kit
	enabled := lvl >= l.level
	l.mu.Unlock()

	if !enabled {
		return
	}

	msg := fmt.Sprintf(format, args...)
	var leveled kitlog.Logger
	switch lvl {
	case LevelDebug:
		leveled = level.Debug(kit)
	case LevelInfo:
		leveled = level.Info(kit)
	case LevelWarn:
		leveled = level.Warn(kit)
	default:
		leveled = level.Error(kit)
	}
	_ = leveled.Log("msg", msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	l := &Logger{
		level:  levelNone,
		output: io.Discard,
	}
	l.rebuild()
	return l
}
