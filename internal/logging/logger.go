// Package logging wraps charmbracelet/log with the process-wide defaults
// and context plumbing used across treewrite.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // process-wide logger
var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
	defaultLoggerMu   sync.RWMutex
)

func getDefaultLogger() *log.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLoggerMu.Lock()
		if defaultLogger == nil {
			defaultLogger = New("info")
		}
		defaultLoggerMu.Unlock()
	})
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// Options configure NewWithOptions.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Unknown values mean "info".
	Level string

	// Writer receives log output. Nil means os.Stderr.
	Writer io.Writer

	// Prefix is printed before every message.
	Prefix string

	// Timestamps adds the time to every line.
	Timestamps bool
}

// New creates a stderr logger with the specified level.
func New(level string) *log.Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions creates a logger from opts.
func NewWithOptions(opts Options) *log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: opts.Timestamps,
		Prefix:          opts.Prefix,
	})
	logger.SetLevel(ParseLevel(opts.Level))
	return logger
}

// Discard returns a logger that drops everything. Tests use it to keep
// output quiet.
func Discard() *log.Logger {
	return NewWithOptions(Options{Writer: io.Discard, Level: "error"})
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Default returns the process-wide logger.
func Default() *log.Logger {
	return getDefaultLogger()
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	getDefaultLogger()
	defaultLoggerMu.Lock()
	defaultLogger = logger
	defaultLoggerMu.Unlock()
}

// SetLevel updates the level of the process-wide logger.
func SetLevel(level string) {
	getDefaultLogger().SetLevel(ParseLevel(level))
}

// NewInteractive returns an info-level logger for commands that talk to a
// person at a terminal.
func NewInteractive() *log.Logger {
	return NewWithOptions(Options{Level: "info", Prefix: "treewrite"})
}
