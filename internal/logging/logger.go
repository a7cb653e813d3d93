// Package logging provides the small structured-logging interface shared by
// every store and service in the module. It mirrors the teacher's
// pkg/core/logger.go: a minimal Debug/Info/Warn/Error interface with a
// default stdlib-writer implementation and a no-op implementation, so
// callers never need a heavyweight logging dependency just to satisfy the
// interface.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
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

// Logger is the logging interface implemented by every component.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

// writerLogger is a thread-safe Logger that writes formatted lines to an
// io.Writer.
type writerLogger struct {
	mu       sync.Mutex
	writer   io.Writer
	minLevel Level
	keyvals  []any
}

// New creates a Logger writing to w, filtering anything below minLevel.
func New(w io.Writer, minLevel Level) Logger {
	return &writerLogger{writer: w, minLevel: minLevel}
}

// NewStd creates a Logger writing to stderr.
func NewStd(minLevel Level) Logger {
	return New(os.Stderr, minLevel)
}

func (l *writerLogger) Debug(msg string, keyvals ...any) { l.log(LevelDebug, msg, keyvals...) }
func (l *writerLogger) Info(msg string, keyvals ...any)  { l.log(LevelInfo, msg, keyvals...) }
func (l *writerLogger) Warn(msg string, keyvals ...any)  { l.log(LevelWarn, msg, keyvals...) }
func (l *writerLogger) Error(msg string, keyvals ...any) { l.log(LevelError, msg, keyvals...) }

func (l *writerLogger) With(keyvals ...any) Logger {
	merged := make([]any, 0, len(l.keyvals)+len(keyvals))
	merged = append(merged, l.keyvals...)
	merged = append(merged, keyvals...)
	return &writerLogger{writer: l.writer, minLevel: l.minLevel, keyvals: merged}
}

func (l *writerLogger) log(level Level, msg string, keyvals ...any) {
	if level < l.minLevel {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	fmt.Fprintf(l.writer, "%s [%s]", ts, level)
	for i := 0; i+1 < len(l.keyvals); i += 2 {
		fmt.Fprintf(l.writer, " %v=%v", l.keyvals[i], l.keyvals[i+1])
	}
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(l.writer, " %v=%v", keyvals[i], keyvals[i+1])
	}
	fmt.Fprintf(l.writer, ": %s\n", msg)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)     {}
func (nopLogger) Info(string, ...any)      {}
func (nopLogger) Warn(string, ...any)      {}
func (nopLogger) Error(string, ...any)     {}
func (n nopLogger) With(...any) Logger     { return n }

// Nop returns a Logger that discards everything. It is the default used by
// every component when no Logger is supplied.
func Nop() Logger { return nopLogger{} }
