// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/sales-gateway/config.toml",
	"configs/config.toml",
}

// Default backend base URLs, used when neither the config file nor the
// environment names one.
const (
	DefaultSubscriptionURL = "http://localhost:5002"
	DefaultCarURL          = "http://localhost:5004"
	DefaultUserURL         = "http://localhost:5005"
	DefaultPort            = 5001
)

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config          string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host            string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port            int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	SubscriptionURL string `kong:"name='subscription-url',help='Subscription service base URL (overrides config).',env='ABONNEMENT_MICROSERVICE_URL'"`
	CarURL          string `kong:"name='car-url',help='Car service base URL (overrides config).',env='CAR_MICROSERVICE_URL'"`
	UserURL         string `kong:"name='user-url',help='User/login service base URL (overrides config).',env='LOGIN_MICROSERVICE_URL'"`
	UpstreamTimeout int    `kong:"name='upstream-timeout',help='Backend request timeout in seconds, 0 disables (overrides config).',env='UPSTREAM_TIMEOUT_SECONDS'"`
	LogLevel        string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Backends BackendsConfig `toml:"backends"`
	Upstream UpstreamConfig `toml:"upstream"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string          `toml:"host"`
	Port         int             `toml:"port"` // 0 means "use default" (5001); TOML cannot distinguish 0 from unset
	BodyMaxBytes int64           `toml:"body_max_bytes"`
	RateLimit    RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig controls per-IP request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// BackendsConfig holds the base URLs of the services behind the gateway.
type BackendsConfig struct {
	SubscriptionURL string `toml:"subscription_url"`
	CarURL          string `toml:"car_url"`
	UserURL         string `toml:"user_url"`
}

// UpstreamConfig holds outbound connection settings shared by all backends.
type UpstreamConfig struct {
	// TimeoutSeconds bounds a whole backend round-trip. Zero leaves calls
	// unbounded, so an unresponsive backend holds the request until the
	// connection fails.
	TimeoutSeconds  int `toml:"timeout_seconds"`
	IdleConnections int `toml:"idle_connections"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// reservedRoutes are gateway paths the metrics endpoint must not shadow.
var reservedRoutes = []string{"/subscriptions", "/cars", "/login", "/health"}

// Load builds the configuration from defaults, an optional TOML file and CLI
// overrides. When no explicit path is given (via --config or CONFIG_PATH), it
// searches /etc/sales-gateway/config.toml then configs/config.toml; if neither
// exists the gateway runs on defaults plus flags and environment.
func Load(cli *CLI) (*Config, error) {
	return load(cli, configSearchPaths)
}

func load(cli *CLI, searchPaths []string) (*Config, error) {
	var cfg Config

	path := cli.Config
	if path == "" {
		path = findConfigInPaths(searchPaths)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.filePath = path
	}

	cfg.applyCLI(cli)
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.Backends.trimSlashes()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.SubscriptionURL != "" {
		c.Backends.SubscriptionURL = cli.SubscriptionURL
	}
	if cli.CarURL != "" {
		c.Backends.CarURL = cli.CarURL
	}
	if cli.UserURL != "" {
		c.Backends.UserURL = cli.UserURL
	}
	if cli.UpstreamTimeout != 0 {
		c.Upstream.TimeoutSeconds = cli.UpstreamTimeout
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	for _, b := range []struct {
		key, value string
	}{
		{"backends.subscription_url", c.Backends.SubscriptionURL},
		{"backends.car_url", c.Backends.CarURL},
		{"backends.user_url", c.Backends.UserURL},
	} {
		if err := validateBackendURL(b.key, b.value); err != nil {
			return err
		}
	}

	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Server.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", c.Server.BodyMaxBytes)
	}
	if c.Upstream.TimeoutSeconds < 0 {
		return fmt.Errorf("upstream.timeout_seconds must be non-negative; got %d", c.Upstream.TimeoutSeconds)
	}
	if c.Upstream.IdleConnections < 0 {
		return fmt.Errorf("upstream.idle_connections must be non-negative; got %d", c.Upstream.IdleConnections)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.Server.RateLimit.RequestsPerSecond)
	}

	// Log fields.
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	// Metrics path validation (only when metrics are enabled).
	if c.Metrics.Enabled {
		p := c.Metrics.Path
		if p == "" || p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		if p == "/" {
			return fmt.Errorf("metrics.path %q conflicts with the service descriptor route", p)
		}
		for _, reserved := range reservedRoutes {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

func validateBackendURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https; got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host; got %q", key, raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("%s must not carry a query or fragment; got %q", key, raw)
	}
	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields (Port, BodyMaxBytes, etc.), zero means "unset" because TOML
// cannot distinguish between an explicit 0 and an omitted key. The exception is
// Upstream.TimeoutSeconds, where zero is the meaningful "no timeout" value.
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.BodyMaxBytes == 0 {
		c.Server.BodyMaxBytes = 10 * 1024 * 1024 // 10 MB
	}
	if c.Backends.SubscriptionURL == "" {
		c.Backends.SubscriptionURL = DefaultSubscriptionURL
	}
	if c.Backends.CarURL == "" {
		c.Backends.CarURL = DefaultCarURL
	}
	if c.Backends.UserURL == "" {
		c.Backends.UserURL = DefaultUserURL
	}
	if c.Upstream.IdleConnections == 0 {
		c.Upstream.IdleConnections = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// trimSlashes drops trailing slashes so paths can be appended by concatenation.
func (b *BackendsConfig) trimSlashes() {
	b.SubscriptionURL = strings.TrimRight(b.SubscriptionURL, "/")
	b.CarURL = strings.TrimRight(b.CarURL, "/")
	b.UserURL = strings.TrimRight(b.UserURL, "/")
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WarnPermissions logs a warning if the config file is readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
