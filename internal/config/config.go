// Package config handles loading, parsing, and validating application configuration.
// Values come from built-in defaults, then an optional YAML file, then environment
// variables, with later sources taking precedence.
// file: internal/config/config.go.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvConsumerKey     = "INSTAPAPER_CONSUMER_KEY"
	EnvConsumerSecret  = "INSTAPAPER_CONSUMER_SECRET" //nolint:gosec // G101: variable name, not a secret.
	EnvUsername        = "INSTAPAPER_USERNAME"
	EnvPassword        = "INSTAPAPER_PASSWORD" //nolint:gosec // G101: variable name, not a secret.
	EnvBaseURL         = "INSTAPAPER_BASE_URL"
	EnvRequestTimeout  = "INSTAPAPER_REQUEST_TIMEOUT"
	EnvBulkConcurrency = "INSTAPAPER_BULK_CONCURRENCY"
	EnvLogLevel        = "INSTAPAPER_LOG_LEVEL"
	EnvMetricsAddr     = "INSTAPAPER_METRICS_ADDR"
	EnvUseKeychain     = "INSTAPAPER_USE_KEYCHAIN"
)

// DefaultBaseURL is the production Instapaper API root.
const DefaultBaseURL = "https://www.instapaper.com/api/1"

// ErrMissingCredentials marks a configuration that lacks one or more required credentials.
var ErrMissingCredentials = errors.New("missing required Instapaper credentials")

// ServerConfig contains settings specific to the MCP server component.
type ServerConfig struct {
	// Name is reported to MCP clients during initialization.
	Name string `yaml:"name"`
	// Version is reported to MCP clients during initialization.
	Version string `yaml:"version"`
}

// InstapaperConfig holds the OAuth consumer pair and the account used for xAuth.
type InstapaperConfig struct {
	ConsumerKey    string        `yaml:"consumer_key"`
	ConsumerSecret string        `yaml:"consumer_secret"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// UseKeychain looks the password up in the OS keychain when neither the
	// file nor the environment provides one.
	UseKeychain bool `yaml:"use_keychain"`
}

// BulkConfig controls bulk tool fan-out.
type BulkConfig struct {
	// Concurrency caps in-flight requests per bulk call. Zero or negative means unbounded.
	Concurrency int `yaml:"concurrency"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `yaml:"addr"`
}

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Instapaper InstapaperConfig `yaml:"instapaper"`
	Bulk       BulkConfig       `yaml:"bulk"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// DefaultConfig returns a configuration populated with default values and
// environment overrides applied.
func DefaultConfig() *Config {
	cfg := defaults()
	applyEnvironmentOverrides(cfg, logging.GetLogger("config_default"))
	return cfg
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "instapaper-mcp-server",
			Version: "1.0.0",
		},
		Instapaper: InstapaperConfig{
			BaseURL:        DefaultBaseURL,
			RequestTimeout: 30 * time.Second,
			UseKeychain:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns DefaultConfig when path is empty, and LoadFromFile otherwise.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFromFile(path)
}

// LoadFromFile loads configuration from the specified YAML file path.
// It starts with default values, merges the values from the YAML file,
// and finally applies any environment variable overrides.
// Supports '~' expansion in the file path.
func LoadFromFile(path string) (*Config, error) {
	path = expandPath(path)

	// #nosec G304 -- Path comes from command-line flag, considered trusted input.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file YAML: %s", path)
	}

	applyEnvironmentOverrides(cfg, logging.GetLogger("config_load"))
	return cfg, nil
}

// Validate checks that every credential is present and that numeric settings
// are sane. Missing credentials are reported together, by environment variable name.
func (c *Config) Validate() error {
	var missing []string
	if c.Instapaper.ConsumerKey == "" {
		missing = append(missing, EnvConsumerKey)
	}
	if c.Instapaper.ConsumerSecret == "" {
		missing = append(missing, EnvConsumerSecret)
	}
	if c.Instapaper.Username == "" {
		missing = append(missing, EnvUsername)
	}
	if c.Instapaper.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrMissingCredentials, "set %s", strings.Join(missing, ", "))
	}
	if c.Instapaper.BaseURL == "" {
		return errors.New("instapaper.base_url must not be empty")
	}
	if c.Instapaper.RequestTimeout < 0 {
		return errors.Newf("instapaper.request_timeout must not be negative, got %s", c.Instapaper.RequestTimeout)
	}
	return nil
}

// applyEnvironmentOverrides applies configuration overrides from environment variables.
// A password still missing afterwards is looked up in the OS keychain when enabled.
// Only the source of each credential is logged, never its value.
func applyEnvironmentOverrides(cfg *Config, logger logging.Logger) {
	if v := os.Getenv(EnvUseKeychain); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Instapaper.UseKeychain = b
		} else {
			logger.Warn("Invalid keychain toggle environment variable ignored.", "envVar", EnvUseKeychain, "value", v, "error", err)
		}
	}

	credentials := []struct {
		env      string
		target   *string
		fallback func() string
	}{
		{env: EnvConsumerKey, target: &cfg.Instapaper.ConsumerKey},
		{env: EnvConsumerSecret, target: &cfg.Instapaper.ConsumerSecret},
		{env: EnvUsername, target: &cfg.Instapaper.Username},
		{env: EnvPassword, target: &cfg.Instapaper.Password, fallback: func() string {
			return keychainPassword(cfg, logger)
		}},
	}
	for _, c := range credentials {
		source := "default"
		if *c.target != "" {
			source = "config file"
		}
		if v := os.Getenv(c.env); v != "" {
			*c.target = v
			source = "environment variable"
		}
		if *c.target == "" && c.fallback != nil {
			if v := c.fallback(); v != "" {
				*c.target = v
				source = "system keychain"
			}
		}
		if *c.target == "" {
			logger.Warn("Required credential is missing (checked environment and config file).", "envVar", c.env)
			continue
		}
		logger.Debug("Credential source determined.", "envVar", c.env, "source", source)
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		logger.Debug("Overriding API base URL from environment.", "envVar", EnvBaseURL, "value", v)
		cfg.Instapaper.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Instapaper.RequestTimeout = d
		} else {
			logger.Warn("Invalid request timeout environment variable ignored.", "envVar", EnvRequestTimeout, "value", v, "error", err)
		}
	}
	if v := os.Getenv(EnvBulkConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			logger.Debug("Overriding bulk concurrency from environment.", "envVar", EnvBulkConcurrency, "value", n)
			cfg.Bulk.Concurrency = n
		} else {
			logger.Warn("Invalid bulk concurrency environment variable ignored.", "envVar", EnvBulkConcurrency, "value", v, "error", err)
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		cfg.Metrics.Addr = v
	}
}

// keychainPassword returns the keychain password for the configured username,
// or "" when the keychain is disabled, empty or unreachable.
func keychainPassword(cfg *Config, logger logging.Logger) string {
	if !cfg.Instapaper.UseKeychain || cfg.Instapaper.Username == "" {
		return ""
	}
	password, err := NewPasswordStore(logger).Load(cfg.Instapaper.Username)
	if err != nil {
		logger.Warn("Keychain lookup failed; continuing without it.", "error", err)
		return ""
	}
	return password
}

// expandPath replaces a leading '~' with the user's home directory.
func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[1:])
}
