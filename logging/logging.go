// Package logging wraps charmbracelet/log with the level and subsystem
// conventions a pope server needs: Info off by default behind a toggle
// (Debug, Warn and Error always print), and
// a comma-separated set of trace subsystems (flush, promote, range, ...)
// that can be turned on independently without touching Debug/Error
// verbosity.
package logging

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is the pope server's logging handle. The zero value is not
// usable; construct one with New or Discard.
type Logger struct {
	enabledInfo bool

	muTrace         sync.Mutex
	traceSubsystems map[string]bool

	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	traceLogger *log.Logger
}

// New returns a Logger writing info/debug/trace to stdout and
// warn/error to stderr.
func New(stdout, stderr io.Writer) *Logger {
	return &Logger{
		infoLogger:      log.NewWithOptions(stdout, log.Options{Level: log.InfoLevel, Prefix: "info", TimeFormat: time.RFC3339}),
		warnLogger:      log.NewWithOptions(stderr, log.Options{Level: log.WarnLevel, Prefix: "warn", TimeFormat: time.RFC3339}),
		errorLogger:     log.NewWithOptions(stderr, log.Options{Level: log.ErrorLevel, Prefix: "error", TimeFormat: time.RFC3339}),
		debugLogger:     log.NewWithOptions(stdout, log.Options{Level: log.DebugLevel, Prefix: "debug", TimeFormat: time.RFC3339}),
		traceLogger:     log.NewWithOptions(stdout, log.Options{Level: log.DebugLevel, Prefix: "trace", TimeFormat: time.RFC3339}),
		traceSubsystems: make(map[string]bool),
	}
}

// Discard returns a Logger that drops everything. It is the zero-cost
// default a Tree uses until SetLogger is called.
func Discard() *Logger {
	return New(io.Discard, io.Discard)
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.enabledInfo {
		l.infoLogger.Printf(format, args...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.warnLogger.Printf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.errorLogger.Printf(format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.debugLogger.Printf(format, args...)
}

// Trace logs format/args under the given subsystem name, but only if
// that subsystem (or "all") was enabled via EnableTracing. Subsystems
// the pope tree traces: "flush", "promote", "range", "verify".
func (l *Logger) Trace(subsystem, format string, args ...interface{}) {
	l.muTrace.Lock()
	_, on := l.traceSubsystems[subsystem]
	if !on {
		_, on = l.traceSubsystems["all"]
	}
	l.muTrace.Unlock()
	if on {
		l.traceLogger.Printf(subsystem+": "+format, args...)
	}
}

// EnableInfo turns on Info-level logging.
func (l *Logger) EnableInfo() {
	l.enabledInfo = true
}

// EnableTracing replaces the set of enabled trace subsystems with the
// comma-separated list in traces. An empty string disables tracing.
func (l *Logger) EnableTracing(traces string) {
	l.muTrace.Lock()
	defer l.muTrace.Unlock()
	l.traceSubsystems = make(map[string]bool)
	if traces == "" {
		return
	}
	for _, subsystem := range strings.Split(traces, ",") {
		l.traceSubsystems[strings.TrimSpace(subsystem)] = true
	}
}
