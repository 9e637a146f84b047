package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// Logger defines a minimal, printf-style logging contract.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	if cl, ok := logger.(*componentLogger); ok && cl == nil {
		return Nop()
	}
	return logger
}

var (
	sinkOnce sync.Once
	sink     *log.Logger
	minLevel = levelFromEnv()
)

func levelFromEnv() LogLevel {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("YOXO_LOG_LEVEL"))) {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func getSink() *log.Logger {
	sinkOnce.Do(func() {
		sink = log.New(os.Stderr, "", log.LstdFlags)
	})
	return sink
}

type componentLogger struct {
	component string
	level     LogLevel
}

// NewComponentLogger creates a logger scoped to a specific component.
func NewComponentLogger(component string) Logger {
	return &componentLogger{component: component, level: minLevel}
}

func (l *componentLogger) log(level LogLevel, tag, format string, args ...any) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		getSink().Printf("[%s] [%s] %s", tag, l.component, msg)
		return
	}
	getSink().Printf("[%s] %s", tag, msg)
}

func (l *componentLogger) Debug(format string, args ...any) {
	l.log(DEBUG, "DEBUG", format, args...)
}

func (l *componentLogger) Info(format string, args ...any) {
	l.log(INFO, "INFO", format, args...)
}

func (l *componentLogger) Warn(format string, args ...any) {
	l.log(WARN, "WARN", format, args...)
}

func (l *componentLogger) Error(format string, args ...any) {
	l.log(ERROR, "ERROR", format, args...)
}
