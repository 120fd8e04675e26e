// Package logger is the structured logging abstraction every layer of the
// store writes through, with adapters for zerolog, zap, logrus and slog,
// repurposed here to trace store operations (put/get/delete/consolidate/
// commit) instead of SQL statements.
package logger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"
)

// ErrRecordNotFound is the sentinel Trace checks to decide whether a
// "not found" result should be logged as an error or suppressed, mirroring
// IgnoreRecordNotFoundError's purpose in gorm's logger.
var ErrRecordNotFound = errors.New("record not found")

// LogLevel controls how much Interface emits.
type LogLevel int

const (
	Silent LogLevel = iota
	Error
	Warn
	Info
)

// Config configures a concrete Interface implementation.
type Config struct {
	LogLevel                  LogLevel
	SlowThreshold             time.Duration
	ParameterizedQueries      bool
	IgnoreRecordNotFoundError bool
	Colorful                  bool
}

// Interface is the logging contract every adapter (and the default
// Logger below) implements. Trace reports one completed store operation:
// the default Logger does not call fc at Silent; at any other level it calls
// fc even when the line it builds is then not printed.
type Interface interface {
	LogMode(LogLevel) Interface
	Info(ctx context.Context, msg string, data ...interface{})
	Warn(ctx context.Context, msg string, data ...interface{})
	Error(ctx context.Context, msg string, data ...interface{})
	Trace(ctx context.Context, begin time.Time, fc func() (op string, rowsAffected int64), err error)
}

// DefaultLogLevel is read from ESTORE_LOG_LEVEL at init, mirroring the
// teacher's GORM_LOG_LEVEL convention.
var DefaultLogLevel LogLevel

func init() {
	switch os.Getenv("ESTORE_LOG_LEVEL") {
	case "info":
		DefaultLogLevel = Info
	case "warn":
		DefaultLogLevel = Warn
	case "error":
		DefaultLogLevel = Error
	default:
		DefaultLogLevel = Warn
	}
	if l, ok := DefaultLogger.(*Logger); ok {
		l.LogLevel = DefaultLogLevel
	}
}

// LogWriter is anything Logger can print a line to.
type LogWriter interface {
	Println(v ...interface{})
}

// Logger is the minimal stdlib-backed Interface implementation, used when
// no richer adapter has been configured.
type Logger struct {
	LogWriter
	LogLevel LogLevel
}

// DefaultLogger writes to stdout at DefaultLogLevel.
var DefaultLogger Interface = &Logger{LogWriter: log.New(os.Stdout, "\r\n", 0), LogLevel: DefaultLogLevel}

func (l *Logger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *Logger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Println(fmt.Sprintf("[info] %v", fmt.Sprintf(msg, data...)))
	}
}

func (l *Logger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Println(fmt.Sprintf("[warn] %v", fmt.Sprintf(msg, data...)))
	}
}

func (l *Logger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Println(fmt.Sprintf("[error] %v", fmt.Sprintf(msg, data...)))
	}
}

func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (op string, rowsAffected int64), err error) {
	if l.LogLevel <= Silent {
		return
	}
	elapsed := time.Since(begin)
	op, rows := fc()
	switch {
	case err != nil && l.LogLevel >= Error:
		l.Println(fmt.Sprintf("[error] [%.3fms] [rows:%d] %s: %v", float64(elapsed.Nanoseconds())/1e6, rows, op, err))
	case l.LogLevel >= Info:
		l.Println(fmt.Sprintf("[info] [%.3fms] [rows:%d] %s", float64(elapsed.Nanoseconds())/1e6, rows, op))
	}
}
