// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultBackendURL is where the evaluation backend listens unless configured otherwise.
	defaultBackendURL = "http://localhost:8000"
	// defaultListenAddr is the address the web dashboard binds to.
	defaultListenAddr = "127.0.0.1:5173"
	// defaultRequestTimeout is the default timeout for backend requests.
	defaultRequestTimeout = 600 * time.Second
	// defaultMaxUploadBytes caps the size of an uploaded run report.
	defaultMaxUploadBytes = 10 << 20
	// defaultLogFile is used when no log file is configured.
	defaultLogFile = "evalboard.log"
)

// Config represents the top-level application configuration.
type Config struct {
	BackendURL     string   `json:"backendURL" mapstructure:"backendURL"`
	ListenAddr     string   `json:"listen" mapstructure:"listen"`
	TimeoutSeconds int      `json:"timeout,omitempty" mapstructure:"timeout"`
	Debug          bool     `json:"debug" mapstructure:"debug"`
	LogFile        string   `json:"logFile,omitempty" mapstructure:"logFile"`
	AllowedOrigins []string `json:"allowedOrigins,omitempty" mapstructure:"allowedOrigins"`
	MaxUploadBytes int64    `json:"maxUploadBytes,omitempty" mapstructure:"maxUploadBytes"`
	ConfigPath     string   `json:"-" mapstructure:"-"`
}

// Default returns a configuration populated with the built-in defaults.
func Default() Config {
	return Config{
		BackendURL:     defaultBackendURL,
		ListenAddr:     defaultListenAddr,
		TimeoutSeconds: int(defaultRequestTimeout.Seconds()),
		LogFile:        defaultLogFile,
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxUploadBytes: defaultMaxUploadBytes,
	}
}

// RequestTimeout returns the timeout duration for backend requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// Listen returns the dashboard listen address, applying a default if not set.
func (c Config) Listen() string {
	if addr := strings.TrimSpace(c.ListenAddr); addr != "" {
		return addr
	}
	return defaultListenAddr
}

// UploadLimit returns the maximum accepted size of an uploaded report in bytes.
func (c Config) UploadLimit() int64 {
	if c.MaxUploadBytes <= 0 {
		return defaultMaxUploadBytes
	}
	return c.MaxUploadBytes
}

// BackendBaseURL returns the backend URL without a trailing slash.
func (c Config) BackendBaseURL() string {
	base := strings.TrimSpace(c.BackendURL)
	if base == "" {
		base = defaultBackendURL
	}
	return strings.TrimRight(base, "/")
}

// Validate reports configuration values that cannot work.
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendBaseURL())
	if err != nil {
		return fmt.Errorf("invalid backendURL %q: %w", c.BackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backendURL %q: scheme must be http or https", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backendURL %q: missing host", c.BackendURL)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid timeout %d: must not be negative", c.TimeoutSeconds)
	}
	return nil
}
