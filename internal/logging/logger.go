// =============================================================================
// distiviz - Logging
// =============================================================================
//
// Leveled logging behind a small interface so packages can accept any
// implementation. The default implementation writes "[LEVEL] message" lines
// through the standard log package.
//
// LEVELS (least to most verbose):
//   error, warn, info, debug
//
// =============================================================================

package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

// Logger is the logging interface used throughout distiviz.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Level is a logging verbosity level.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps a config string to a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug", "trace":
		return LevelDebug
	}
	return LevelInfo
}

type stdLogger struct {
	level Level
	out   *log.Logger
}

// New returns a Logger that writes to w at the given level.
func New(w io.Writer, level Level) Logger {
	return &stdLogger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// NewDefault returns a Logger writing to stderr at the given level name.
func NewDefault(level string) Logger {
	return New(os.Stderr, ParseLevel(level))
}

func (l *stdLogger) Debug(msg string, args ...interface{}) {
	if l.level >= LevelDebug {
		l.out.Printf("[DEBUG] "+msg, args...)
	}
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	if l.level >= LevelInfo {
		l.out.Printf("[INFO] "+msg, args...)
	}
}

func (l *stdLogger) Warn(msg string, args ...interface{}) {
	if l.level >= LevelWarn {
		l.out.Printf("[WARN] "+msg, args...)
	}
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.out.Printf("[ERROR] "+msg, args...)
}

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
