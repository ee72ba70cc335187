// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Generate GenerateConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 90s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"90s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 75s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"75s"`
}

// GenerateConfig holds document generation settings.
type GenerateConfig struct {
	// MaxFileSize is the maximum size of each uploaded file in bytes (default: 25MB)
	MaxFileSize int64 `env:"GENERATE_MAX_FILE_SIZE" default:"26214400"`

	// MaxConcurrent is the maximum number of parallel generations (default: 4)
	MaxConcurrent int `env:"GENERATE_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a generation slot (default: 15s)
	MaxWaitTime time.Duration `env:"GENERATE_MAX_WAIT_TIME" default:"15s"`

	// Timeout is the maximum duration of a single generation (default: 60s)
	Timeout time.Duration `env:"GENERATE_TIMEOUT" default:"60s"`

	// AliasesFile is an optional YAML file replacing the built-in header vocabulary
	AliasesFile string `env:"ALIASES_FILE"`

	// MarkerText is the default insertion marker
	MarkerText string `env:"MARKER_TEXT" default:"INSERIR CAMPO PORTARIAS"`

	// MarkerScope is where the marker is searched: body or all (default: body)
	MarkerScope string `env:"MARKER_SCOPE" default:"body"`

	// LineSeparator joins the fields of one inserted line (default: " - ")
	LineSeparator string `env:"LINE_SEPARATOR" default:" - "`

	// SpaceAfterPt is the spacing after inserted paragraphs in points (default: 6)
	SpaceAfterPt int `env:"SPACE_AFTER_PT" default:"6"`

	// Globals are extra placeholder values, "KEY=value,KEY2=value2"
	Globals map[string]string `env:"GENERATE_GLOBALS"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// GenerateLimit is requests per minute for the generation endpoint (default: 20)
	GenerateLimit int `env:"RATE_LIMIT_GENERATE" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
