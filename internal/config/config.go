// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	ExtraLife ExtraLifeConfig
	Poll      PollConfig
	Export    ExportConfig
	Rate      RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1, the moderation
	// surface is meant to run next to the moderator)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 4400)
	Port int `env:"SERVER_PORT" default:"4400"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0 for SSE)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// StoreConfig holds donation database settings.
type StoreConfig struct {
	// Path is the SQLite database file (default: donations.db)
	Path string `env:"STORE_PATH" default:"donations.db"`
}

// ExtraLifeConfig holds upstream API settings.
type ExtraLifeConfig struct {
	// TeamID is the Extra Life team whose donations are moderated (required)
	TeamID string `env:"EXTRALIFE_TEAM_ID" required:"true"`

	// BaseURL overrides the API endpoint, mainly for tests
	BaseURL string `env:"EXTRALIFE_BASE_URL"`

	// FetchTimeout bounds a single donation-list fetch (default: 15s)
	FetchTimeout time.Duration `env:"EXTRALIFE_FETCH_TIMEOUT" default:"15s"`
}

// PollConfig holds background polling settings.
type PollConfig struct {
	// Enabled controls the background fetch loop (default: true)
	Enabled bool `env:"POLL_ENABLED" default:"true"`

	// Interval is how often the donation list is re-fetched (default: 30s)
	Interval time.Duration `env:"POLL_INTERVAL" default:"30s"`
}

// ExportConfig seeds the persisted export settings document the first time
// the application runs. After that the document itself is authoritative.
type ExportConfig struct {
	// SettingsPath is where the settings document lives (default: export-settings.json)
	SettingsPath string `env:"EXPORT_SETTINGS_PATH" default:"export-settings.json"`

	// Dir is the initial export directory (default: exports)
	Dir string `env:"EXPORT_DIR" default:"exports"`

	// FileName is the initial export file base name (default: donations)
	FileName string `env:"EXPORT_FILE_NAME" default:"donations"`

	// Format is the initial export format: csv or spreadsheet (default: csv)
	Format string `env:"EXPORT_FORMAT" default:"csv"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
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
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
