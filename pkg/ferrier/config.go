package ferrier

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents transport configuration for building a ferrier.Transport.
//
// # Debug logging
//
// Debug enables a one-line log per request of the form "<tag>: <verb> <url>"
// on the configured Logger (or the package default sink when none is set).
// This replaces the process-wide toggle of older data layers with explicit
// per-transport configuration.
//
// # Timeouts and retries
//
// Every request carries a fixed timeout (90 seconds unless Timeout is set).
// A timeout manifests identically to an unreachable server. Retries are
// disabled unless RetryMax is set; this layer implements no retry policy of
// its own, the knob only tunes the underlying HTTP client.
type Config struct {
	// Endpoint: base URL for the backend (e.g., "https://api.example.com").
	// restclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present.
	Endpoint string

	// Debug enables per-request logging on the Logger.
	Debug bool

	// Logger: optional structured logger used by the transport.
	Logger Logger

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Timeout overrides the fixed per-request timeout. Zero means the
	// 90-second default.
	Timeout time.Duration

	// RetryMax: maximum number of retries for transient failures. Zero
	// disables retries, which is the default.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
}

// Package-level default log sink. Transports built without an explicit
// Logger fall back to this. Set it once during program initialization.
var (
	loggerMu      sync.RWMutex
	defaultLogger Logger = NewConsoleLogger(os.Stderr)
)

// SetDefaultLogger replaces the package-wide fallback logger.
func SetDefaultLogger(logger Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	defaultLogger = logger
}

// DefaultLogger returns the package-wide fallback logger.
func DefaultLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()

	return defaultLogger
}

// consoleLogger is the default log sink: one line per entry on a writer.
type consoleLogger struct {
	out io.Writer
}

// NewConsoleLogger returns a Logger writing plain lines to out.
func NewConsoleLogger(out io.Writer) Logger {
	return &consoleLogger{out: out}
}

func (l *consoleLogger) Debug(msg string, fields map[string]interface{}) { l.write("DEBUG", msg, fields) }
func (l *consoleLogger) Info(msg string, fields map[string]interface{})  { l.write("INFO", msg, fields) }
func (l *consoleLogger) Warn(msg string, fields map[string]interface{})  { l.write("WARN", msg, fields) }
func (l *consoleLogger) Error(msg string, fields map[string]interface{}) { l.write("ERROR", msg, fields) }

func (l *consoleLogger) write(level, msg string, fields map[string]interface{}) {
	if len(fields) == 0 {
		fmt.Fprintf(l.out, "%s %s\n", level, msg)

		return
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	line := fmt.Sprintf("%s %s", level, msg)
	for _, key := range keys {
		line += fmt.Sprintf(" %s=%v", key, fields[key])
	}

	fmt.Fprintln(l.out, line)
}
