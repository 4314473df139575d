// ABOUTME: Configuration loading and parsing for frontdesk
// ABOUTME: Supports YAML or TOML files with .env loading, env var expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values applied before the config file is decoded.
const (
	DefaultHTTPAddr        = "0.0.0.0:8080"
	DefaultDatabaseDriver  = "sqlite"
	DefaultDatabasePath    = "visitors.db"
	DefaultUsername        = "admin"
	DefaultPassword        = "admin123"
	DefaultComplexName     = "Skyline Heights Residency"
	DefaultHeroImageURL    = "https://images.pexels.com/photos/439391/pexels-photo-439391.jpeg"
	DefaultMetricsPath     = "/metrics"
	DefaultTailscaleHost   = "frontdesk"
	defaultInsecureSecret  = "change-me-frontdesk-secret"
	minimumSecretKeyLength = 16
)

// Config represents the complete frontdesk configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Desk      DeskConfig      `yaml:"desk" toml:"desk"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Driver is "sqlite" (pure Go) or "sqlite3" (cgo)
	Driver string `yaml:"driver" toml:"driver"`
	Path   string `yaml:"path" toml:"path"`
}

// AuthConfig holds session and login configuration
type AuthConfig struct {
	// SecretKey signs the one-shot notice cookie
	SecretKey string `yaml:"secret_key" toml:"secret_key"`

	// SessionTTL bounds session lifetime; zero means sessions never expire
	SessionTTL    time.Duration `yaml:"-" toml:"-"`
	SessionTTLRaw string        `yaml:"session_ttl" toml:"session_ttl"`

	DefaultUsername string `yaml:"default_username" toml:"default_username"`
	DefaultPassword string `yaml:"default_password" toml:"default_password"`

	// AllowPasswordReset enables the username-only password reset form.
	// Pointer so an omitted key keeps the default of true.
	AllowPasswordReset *bool `yaml:"allow_password_reset" toml:"allow_password_reset"`
}

// PasswordResetEnabled reports whether the forgot-password form is served.
func (a AuthConfig) PasswordResetEnabled() bool {
	return a.AllowPasswordReset == nil || *a.AllowPasswordReset
}

// DeskConfig holds presentation settings for the web UI
type DeskConfig struct {
	ComplexName  string `yaml:"complex_name" toml:"complex_name"`
	HeroImageURL string `yaml:"hero_image_url" toml:"hero_image_url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: DefaultHTTPAddr,
		},
		Database: DatabaseConfig{
			Driver: DefaultDatabaseDriver,
			Path:   DefaultDatabasePath,
		},
		Auth: AuthConfig{
			SecretKey:       defaultInsecureSecret,
			DefaultUsername: DefaultUsername,
			DefaultPassword: DefaultPassword,
		},
		Desk: DeskConfig{
			ComplexName:  DefaultComplexName,
			HeroImageURL: DefaultHeroImageURL,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Path: DefaultMetricsPath,
		},
		Tailscale: TailscaleConfig{
			Hostname: DefaultTailscaleHost,
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// A .env file in the working directory is loaded first if present.
// Environment variables in the format ${VAR_NAME} are expanded.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// A missing file is not an error: defaults (plus env overrides) are returned.
func Load(path string) (*Config, error) {
	// .env is optional, mostly useful in development
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// run on defaults
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		expanded := expandEnvVars(string(data))
		if err := decode(path, expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// decode picks the decoder from the file extension
func decode(path, content string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(content, cfg)
		return err
	}
	return yaml.Unmarshal([]byte(content), cfg)
}

// envVarPattern matches ${VAR_NAME}
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnvOverrides applies the handful of variables that win over the file
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FRONTDESK_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("FRONTDESK_HTTP_ADDR"); v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v := os.Getenv("FRONTDESK_SECRET_KEY"); v != "" {
		cfg.Auth.SecretKey = v
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Database.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be sqlite or sqlite3, got %q", c.Database.Driver)
	}

	if len(c.Auth.SecretKey) < minimumSecretKeyLength {
		return fmt.Errorf("auth.secret_key must be at least %d characters", minimumSecretKeyLength)
	}

	if c.Auth.DefaultUsername == "" || c.Auth.DefaultPassword == "" {
		return fmt.Errorf("auth.default_username and auth.default_password are required")
	}

	if c.Metrics.Enabled {
		if err := validateMetricsPath(c.Metrics.Path); err != nil {
			return err
		}
	}

	return nil
}

// reservedRoutes are the path roots served by the health checks, static
// assets and desk pages. The metrics endpoint may not sit on or under them.
var reservedRoutes = []string{
	"/health",
	"/static",
	"/login",
	"/logout",
	"/forgot-password",
	"/visitors",
	"/residents",
	"/security-logs",
	"/help",
}

func validateMetricsPath(p string) error {
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}
	if strings.ContainsAny(p, "{} \t") {
		return fmt.Errorf("metrics.path %q must not contain braces or whitespace", p)
	}
	if p == "/" {
		return fmt.Errorf("metrics.path cannot be /")
	}
	for _, route := range reservedRoutes {
		if p == route || strings.HasPrefix(p, route+"/") {
			return fmt.Errorf("metrics.path %q collides with the %s route", p, route)
		}
	}
	return nil
}

// UsesDefaultSecret reports whether the notice-signing key was left at its built-in value.
func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.SecretKey == defaultInsecureSecret
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Auth.SessionTTLRaw == "" {
		return nil
	}

	ttl, err := time.ParseDuration(cfg.Auth.SessionTTLRaw)
	if err != nil {
		return fmt.Errorf("parsing session_ttl %q: %w", cfg.Auth.SessionTTLRaw, err)
	}
	if ttl < 0 {
		return fmt.Errorf("session_ttl must not be negative, got %s", ttl)
	}
	cfg.Auth.SessionTTL = ttl
	return nil
}
