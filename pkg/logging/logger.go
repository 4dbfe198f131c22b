// Package logging configures zerolog for the dashboard.
package logging

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level, defaulting to info.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "warning":
		return zerolog.WarnLevel
	case "debug", "info", "warn", "error":
		l, _ := zerolog.ParseLevel(strings.ToLower(string(level)))
		return l
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// accessWriter turns access log lines into info events.
type accessWriter struct {
	logger zerolog.Logger
}

// AccessWriter returns a writer for line-based access logs (such as
// gorilla/handlers) that emits one info event per line.
func AccessWriter(logger zerolog.Logger) io.Writer {
	return accessWriter{logger: logger}
}

func (w accessWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		w.logger.Info().Msg(string(line))
	}
	return len(p), nil
}

// Log Level Guidelines:
//
// Debug: interceptor decisions (conditional request, stored validator),
// gate phases, route change start.
//
// Info: startup/shutdown, successful route changes, access log lines.
//
// Warn: validator store failures, API errors, preference load failures.
//
// Error: failed route changes, failed API requests, fatal startup errors.
//
// Context Fields:
//   - component: emitting component
//   - url: request URI used as validator key
//   - etag: validator value
//   - transition: route transition id
//   - route: route name
//   - endpoint: API endpoint below the API root
//   - status: HTTP status code
