// Package config loads the dashboard configuration from flags and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the dashboard process configuration.
type Config struct {
	Listen             string        `arg:"--listen,env:LISTEN_ADDR" default:":3000" help:"address the dashboard listens on"`
	APIURL             string        `arg:"--api-url,env:CHE_API_URL" default:"http://localhost:8080" help:"base URL of the Che server"`
	APIPrefix          string        `arg:"--api-prefix,env:CHE_API_PREFIX" default:"/api" help:"API root below the base URL; only URLs under it are conditionally fetched"`
	Token              string        `arg:"--token,env:CHE_TOKEN" help:"bearer token for API calls"`
	RedisAddr          string        `arg:"--redis-addr,env:REDIS_ADDR" help:"Redis address for shared ETag validators; empty keeps them in memory"`
	RequestTimeout     time.Duration `arg:"--request-timeout,env:REQUEST_TIMEOUT" default:"30s" help:"timeout per API request"`
	PreferencesTimeout time.Duration `arg:"--preferences-timeout,env:PREFERENCES_TIMEOUT" default:"15s" help:"timeout for loading profile preferences"`
	ShutdownTimeout    time.Duration `arg:"--shutdown-timeout,env:SHUTDOWN_TIMEOUT" default:"10s" help:"grace period for in-flight requests on shutdown"`
	LogLevel           string        `arg:"--log-level,env:LOG_LEVEL" default:"info" help:"one of debug, info, warn, error"`
	LogPretty          bool          `arg:"--log-pretty,env:LOG_PRETTY" help:"human-readable console logs"`
}

// Load parses args (without the program name) and the environment.
// arg.ErrHelp is returned unwrapped when help was requested.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	p, err := newParser(cfg)
	if err != nil {
		return nil, err
	}

	if err := p.Parse(args); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("parse arguments: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteHelp writes the usage text to w.
func WriteHelp(w io.Writer) error {
	p, err := newParser(&Config{})
	if err != nil {
		return err
	}
	p.WriteHelp(w)
	return nil
}

func newParser(cfg *Config) (*arg.Parser, error) {
	p, err := arg.NewParser(arg.Config{Program: "dashboard"}, cfg)
	if err != nil {
		return nil, fmt.Errorf("build argument parser: %w", err)
	}
	return p, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("%w: listen address is required", ErrInvalidConfig)
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api url must be absolute (got %q)", ErrInvalidConfig, c.APIURL)
	}

	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("%w: api prefix must start with / (got %q)", ErrInvalidConfig, c.APIPrefix)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	if c.PreferencesTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}

	return nil
}
