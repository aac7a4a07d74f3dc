package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the gateway configuration.
const (
	DefaultListen            = "127.0.0.1:8889"
	DefaultServers           = "127.0.0.1:2181"
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultConnectionTimeout = 3 * time.Second
	DefaultSessionTimeout    = 10 * time.Second
	DefaultRetryTimes        = 1
	DefaultRetryInterval     = 1 * time.Second
)

// Store backends.
const (
	BackendZooKeeper = "zookeeper"
	BackendMemory    = "memory"
)

// Config holds the gateway configuration parsed from YAML.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds the HTTP side of the gateway.
type ServerConfig struct {
	// Listen is the host:port the HTTP server binds (default 127.0.0.1:8889).
	Listen string `yaml:"listen"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Metrics enables GET /metrics (default true).
	Metrics bool `yaml:"metrics"`

	// Auth configures how the gateway authenticates REST clients.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	// Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// StoreConfig selects and configures the coordination store client.
type StoreConfig struct {
	// Backend is one of: zookeeper | memory.
	Backend string `yaml:"backend"`

	// Servers lists the ZooKeeper ensemble as host:port pairs.
	Servers []string `yaml:"servers"`

	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
	SessionTimeout    time.Duration `yaml:"session_timeout"`

	// RetryTimes is how many times a call is retried after a connection
	// loss, RetryInterval apart.
	RetryTimes    int           `yaml:"retry_times"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`

	// Format is one of: json | text.
	Format string `yaml:"format"`
}

// SlogLevel returns Level as a slog.Level. Unknown values map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseServers splits a ZooKeeper connection string such as
// "zoo1:2181,zoo2:2181" into its servers.
func ParseServers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Override adjusts a parsed Config, e.g. with command-line flags. Overrides
// run after the file is parsed and before validation.
type Override func(*Config)

// Load reads and parses the config file at path, applies overrides and
// validates the result. An empty path starts from the defaults. Missing
// fields keep their defaults.
func Load(path string, overrides ...Override) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          DefaultListen,
			ShutdownTimeout: DefaultShutdownTimeout,
			Metrics:         true,
			Auth:            AuthConfig{Mode: "none"},
		},
		Store: StoreConfig{
			Backend:           BackendZooKeeper,
			Servers:           []string{DefaultServers},
			ConnectionTimeout: DefaultConnectionTimeout,
			SessionTimeout:    DefaultSessionTimeout,
			RetryTimes:        DefaultRetryTimes,
			RetryInterval:     DefaultRetryInterval,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Validate checks structural constraints on cfg.
func Validate(cfg *Config) error {
	if _, port, err := net.SplitHostPort(cfg.Server.Listen); err != nil || port == "" {
		return fmt.Errorf("server.listen %q: want host:port", cfg.Server.Listen)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.Auth.Mode == "apikey" && cfg.Server.Auth.KeyEnv == "" {
		return fmt.Errorf("server.auth.key_env is required when mode is apikey")
	}

	switch cfg.Store.Backend {
	case BackendZooKeeper:
		if len(cfg.Store.Servers) == 0 {
			return fmt.Errorf("store.servers must not be empty")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("store.backend %q unknown: want zookeeper|memory", cfg.Store.Backend)
	}
	if cfg.Store.ConnectionTimeout <= 0 {
		return fmt.Errorf("store.connection_timeout must be positive")
	}
	if cfg.Store.SessionTimeout <= 0 {
		return fmt.Errorf("store.session_timeout must be positive")
	}
	if cfg.Store.RetryTimes < 0 {
		return fmt.Errorf("store.retry_times must not be negative")
	}
	if cfg.Store.RetryInterval < 0 {
		return fmt.Errorf("store.retry_interval must not be negative")
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q unknown: want json|text", cfg.Log.Format)
	}
	return nil
}
