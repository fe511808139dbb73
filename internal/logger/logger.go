// Package logger provides structured logging for complexprof.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus logger
type Logger struct {
	log *logrus.Logger
}

// Entry wraps logrus entry for method chaining
type Entry struct {
	entry *logrus.Entry
	level logrus.Level
}

// New creates a new logger instance
func New(level string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}

	log := logrus.New()
	log.SetOutput(output)

	// Parse level
	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})

	return &Logger{log: log}
}

// FieldLogger exposes the underlying logger to the profiler packages
func (l *Logger) FieldLogger() logrus.FieldLogger {
	return l.log
}

// Enabled reports whether messages at level would be written
func (l *Logger) Enabled(level string) bool {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return false
	}
	return l.log.IsLevelEnabled(lvl)
}

func (l *Logger) at(level logrus.Level) *Entry {
	return &Entry{entry: logrus.NewEntry(l.log), level: level}
}

// Debug starts a debug message
func (l *Logger) Debug() *Entry {
	return l.at(logrus.DebugLevel)
}

// Info starts an info message
func (l *Logger) Info() *Entry {
	return l.at(logrus.InfoLevel)
}

// Warn starts a warning message
func (l *Logger) Warn() *Entry {
	return l.at(logrus.WarnLevel)
}

// Error starts an error message
func (l *Logger) Error() *Entry {
	return l.at(logrus.ErrorLevel)
}

// Str adds a string field
func (e *Entry) Str(key, value string) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Int adds an int field
func (e *Entry) Int(key string, value int) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Uint64 adds an unsigned counter field
func (e *Entry) Uint64(key string, value uint64) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Bool adds a bool field
func (e *Entry) Bool(key string, value bool) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Err adds an error field
func (e *Entry) Err(err error) *Entry {
	if err != nil {
		e.entry = e.entry.WithError(err)
	}
	return e
}

// Dur adds a duration field (formatted in milliseconds)
func (e *Entry) Dur(key string, duration time.Duration) *Entry {
	ms := float64(duration.Microseconds()) / 1000.0
	e.entry = e.entry.WithField(key, ms)
	return e
}

// Ns adds a duration field in nanoseconds, the unit of profile reports
func (e *Entry) Ns(key string, duration time.Duration) *Entry {
	e.entry = e.entry.WithField(key, duration.Nanoseconds())
	return e
}

// Msg logs the message with accumulated fields
func (e *Entry) Msg(msg string) {
	e.entry.Log(e.level, msg)
}
