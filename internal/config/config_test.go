// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, "frontdesk.yaml", `
server:
  http_addr: "127.0.0.1:9090"

database:
  driver: "sqlite3"
  path: "./test.db"

auth:
  secret_key: "0123456789abcdef0123"
  session_ttl: "12h"
  default_username: "desk"
  default_password: "desk-pass"
  allow_password_reset: false

desk:
  complex_name: "Maple Court"

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true
  path: "/metrics"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "127.0.0.1:9090" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:9090")
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "sqlite3")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want %v", cfg.Auth.SessionTTL, 12*time.Hour)
	}
	if cfg.Auth.DefaultUsername != "desk" {
		t.Errorf("Auth.DefaultUsername = %q, want %q", cfg.Auth.DefaultUsername, "desk")
	}
	if cfg.Auth.PasswordResetEnabled() {
		t.Error("Auth.PasswordResetEnabled() = true, want false")
	}
	if cfg.Desk.ComplexName != "Maple Court" {
		t.Errorf("Desk.ComplexName = %q, want %q", cfg.Desk.ComplexName, "Maple Court")
	}
	// Unset keys keep their defaults
	if cfg.Desk.HeroImageURL != DefaultHeroImageURL {
		t.Errorf("Desk.HeroImageURL = %q, want default", cfg.Desk.HeroImageURL)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.UsesDefaultSecret() {
		t.Error("UsesDefaultSecret() = true, want false")
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "frontdesk.toml", `
[server]
http_addr = "127.0.0.1:7070"

[database]
path = "desk.db"

[desk]
complex_name = "Cedar Towers"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "127.0.0.1:7070" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:7070")
	}
	if cfg.Database.Path != "desk.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "desk.db")
	}
	if cfg.Database.Driver != DefaultDatabaseDriver {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DefaultDatabaseDriver)
	}
	if cfg.Desk.ComplexName != "Cedar Towers" {
		t.Errorf("Desk.ComplexName = %q, want %q", cfg.Desk.ComplexName, "Cedar Towers")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.Auth.DefaultUsername != "admin" || cfg.Auth.DefaultPassword != "admin123" {
		t.Errorf("default credentials = %q/%q, want admin/admin123", cfg.Auth.DefaultUsername, cfg.Auth.DefaultPassword)
	}
	if !cfg.Auth.PasswordResetEnabled() {
		t.Error("Auth.PasswordResetEnabled() = false, want true by default")
	}
	if cfg.Auth.SessionTTL != 0 {
		t.Errorf("Auth.SessionTTL = %v, want 0 (unbounded)", cfg.Auth.SessionTTL)
	}
	if !cfg.UsesDefaultSecret() {
		t.Error("UsesDefaultSecret() = false, want true")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_FRONTDESK_SECRET", "secret-from-env-0123456789")
	t.Setenv("TEST_COMPLEX_NAME", "Env Gardens")

	configPath := writeConfig(t, "frontdesk.yaml", `
auth:
  secret_key: "${TEST_FRONTDESK_SECRET}"
desk:
  complex_name: "${TEST_COMPLEX_NAME}"
  hero_image_url: "${UNSET_VAR_FOR_FRONTDESK_TEST}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.SecretKey != "secret-from-env-0123456789" {
		t.Errorf("Auth.SecretKey = %q, want env value", cfg.Auth.SecretKey)
	}
	if cfg.Desk.ComplexName != "Env Gardens" {
		t.Errorf("Desk.ComplexName = %q, want %q", cfg.Desk.ComplexName, "Env Gardens")
	}
	// Unset env vars expand to empty string
	if cfg.Desk.HeroImageURL != "" {
		t.Errorf("Desk.HeroImageURL = %q, want empty string for unset env var", cfg.Desk.HeroImageURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FRONTDESK_DB_PATH", "/tmp/override.db")
	t.Setenv("FRONTDESK_HTTP_ADDR", "127.0.0.1:1234")

	configPath := writeConfig(t, "frontdesk.yaml", `
server:
  http_addr: "0.0.0.0:8080"
database:
  path: "file.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/override.db")
	}
	if cfg.Server.HTTPAddr != "127.0.0.1:1234" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:1234")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, "frontdesk.yaml", `
auth:
  session_ttl: "forever"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "session_ttl") {
		t.Errorf("error = %v, want mention of session_ttl", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "frontdesk.yaml", "server: [unclosed")

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing http addr",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "" },
			wantErr: "server.http_addr is required",
		},
		{
			name: "tailscale allows empty http addr",
			mutate: func(c *Config) {
				c.Server.HTTPAddr = ""
				c.Tailscale.Enabled = true
			},
		},
		{
			name: "tailscale requires hostname",
			mutate: func(c *Config) {
				c.Tailscale.Enabled = true
				c.Tailscale.Hostname = ""
			},
			wantErr: "tailscale.hostname is required",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path is required",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "postgres" },
			wantErr: "database.driver",
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.Auth.SecretKey = "short" },
			wantErr: "auth.secret_key",
		},
		{
			name:    "empty default password",
			mutate:  func(c *Config) { c.Auth.DefaultPassword = "" },
			wantErr: "auth.default_password",
		},
		{
			name: "metrics path must be absolute",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Path = "metrics"
			},
			wantErr: "metrics.path",
		},
		{
			name: "custom metrics path",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Path = "/internal/metrics"
			},
		},
		{
			name: "metrics path ignored when disabled",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.Path = "/login"
			},
		},
		{
			name: "metrics path with pattern syntax",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Path = "/metrics/{name}"
			},
			wantErr: "braces or whitespace",
		},
	}

	for _, p := range []string{
		"/",
		"/health",
		"/health/ready",
		"/static/",
		"/static/app.css",
		"/login",
		"/logout",
		"/forgot-password",
		"/visitors",
		"/visitors/add",
		"/residents",
		"/security-logs",
		"/help",
		"/help/getting-started",
	} {
		tests = append(tests, struct {
			name    string
			mutate  func(*Config)
			wantErr string
		}{
			name: "metrics path " + p + " is reserved",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Path = p
			},
			wantErr: "metrics.path",
		})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
