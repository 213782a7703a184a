package logging

import (
	"log"
	"strings"
	"sync/atomic"
)

// Level represents logging verbosity
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps ERROR, WARN, INFO and DEBUG (any case) to a Level.
// Unknown names fall back to INFO.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// Logger provides leveled logging on top of the standard logger. Each line
// carries a bracketed component tag.
type Logger struct {
	component string
	level     *atomic.Int32
}

var defaultLevel atomic.Int32

func init() {
	defaultLevel.Store(int32(LevelInfo))
}

// SetLevel changes the level of every logger created by For
func SetLevel(level Level) {
	defaultLevel.Store(int32(level))
}

// For returns a logger tagged with component
func For(component string) *Logger {
	return &Logger{component: component, level: &defaultLevel}
}

// Enabled reports whether messages at level are written
func (l *Logger) Enabled(level Level) bool {
	return Level(l.level.Load()) >= level
}

func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	prefix := "[" + l.component + "] "
	if level != LevelInfo {
		prefix += level.String() + " "
	}
	log.Printf(prefix+format, args...)
}
