// ABOUTME: init, adduser and health subcommands
// ABOUTME: adduser writes straight to the database; health probes the running server

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/frontdesk/internal/auth"
	"github.com/2389/frontdesk/internal/config"
	"github.com/2389/frontdesk/internal/store"
)

// addUserArgs holds the parsed adduser flags
type addUserArgs struct {
	username string
	password string
	role     string
}

// parseAddUserArgs accepts both "--flag value" and "--flag=value".
func parseAddUserArgs(args []string) (*addUserArgs, error) {
	parsed := &addUserArgs{role: store.RoleAdmin}

	targets := map[string]*string{
		"--username": &parsed.username,
		"-u":         &parsed.username,
		"--password": &parsed.password,
		"-p":         &parsed.password,
		"--role":     &parsed.role,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if name, value, ok := strings.Cut(arg, "="); ok {
			target, known := targets[name]
			if !known {
				return nil, fmt.Errorf("unknown flag: %s", name)
			}
			*target = value
			continue
		}

		target, known := targets[arg]
		switch {
		case known:
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			*target = args[i+1]
			i++
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag: %s", arg)
		default:
			return nil, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	parsed.username = strings.TrimSpace(parsed.username)
	parsed.role = strings.TrimSpace(parsed.role)

	if parsed.username == "" {
		return nil, errors.New("--username flag is required")
	}
	if strings.TrimSpace(parsed.password) == "" {
		return nil, errors.New("--password flag is required")
	}
	if parsed.role == "" {
		return nil, errors.New("--role cannot be empty")
	}
	return parsed, nil
}

// addUser hashes the password and inserts the account
func addUser(ctx context.Context, users store.UserStore, args *addUserArgs) error {
	hash, err := auth.HashPassword(args.password)
	if err != nil {
		return err
	}

	user := &store.User{
		Username:     args.username,
		PasswordHash: hash,
		Role:         args.role,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return fmt.Errorf("user %q already exists", args.username)
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func runAddUser(ctx context.Context, rawArgs []string) error {
	args, err := parseAddUserArgs(rawArgs)
	if err != nil {
		return err
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path, store.WithDriver(cfg.Database.Driver))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	if err := addUser(ctx, s, args); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created user %s (role: %s) in %s\n", args.username, args.role, cfg.Database.Path)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	return checkHealth(ctx, http.DefaultClient, healthURL(cfg), os.Stdout)
}

// healthURL points at the readiness probe, swapping a wildcard bind address for loopback
func healthURL(cfg *config.Config) string {
	addr := cfg.Server.HTTPAddr
	if cfg.Tailscale.Enabled {
		addr = cfg.Tailscale.Hostname
	}
	if host, port, err := net.SplitHostPort(addr); err == nil && (host == "" || host == "0.0.0.0" || host == "::") {
		addr = net.JoinHostPort("127.0.0.1", port)
	}
	return fmt.Sprintf("http://%s/health/ready", addr)
}

func checkHealth(ctx context.Context, client *http.Client, url string, out io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	fmt.Fprintln(out, "healthy")
	return nil
}

// initAnswers is everything runInit asks for
type initAnswers struct {
	HTTPAddr           string
	DBDriver           string
	DBPath             string
	SecretKey          string
	SessionTTL         string
	AllowPasswordReset bool
	ComplexName        string
	TailscaleEnabled   bool
	TailscaleHostname  string
	TailscaleAuthKey   string
	TailscaleEphemeral bool
	MetricsEnabled     bool
	LogLevel           string
	LogFormat          string
}

// generateSecret returns a random base64 key for notice signing
func generateSecret() (string, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generating secret key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secretBytes), nil
}

// renderConfig writes the YAML that config.Load reads back
func renderConfig(a initAnswers) string {
	var cfg strings.Builder
	cfg.WriteString("# frontdesk configuration\n")
	cfg.WriteString("# Generated by frontdesk init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", a.HTTPAddr))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  driver: %q\n", a.DBDriver))
	cfg.WriteString(fmt.Sprintf("  path: %q\n", a.DBPath))
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  secret_key: %q\n", a.SecretKey))
	if a.SessionTTL != "" {
		cfg.WriteString(fmt.Sprintf("  session_ttl: %q\n", a.SessionTTL))
	}
	cfg.WriteString(fmt.Sprintf("  allow_password_reset: %t\n", a.AllowPasswordReset))
	cfg.WriteString("\n")

	cfg.WriteString("desk:\n")
	cfg.WriteString(fmt.Sprintf("  complex_name: %q\n", a.ComplexName))
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", a.TailscaleEnabled))
	if a.TailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", a.TailscaleHostname))
		if a.TailscaleAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: %q\n", a.TailscaleAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  ephemeral: %t\n", a.TailscaleEphemeral))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", a.LogLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", a.LogFormat))
	cfg.WriteString("\n")

	cfg.WriteString("metrics:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", a.MetricsEnabled))
	cfg.WriteString("  path: \"/metrics\"\n")

	return cfg.String()
}

func yes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("frontdesk configuration setup")
	fmt.Println("=============================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDbPath := filepath.Join(getDataPath(), config.DefaultDatabasePath)

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if !yes(overwrite) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	secret, err := generateSecret()
	if err != nil {
		return err
	}

	var a initAnswers
	a.SecretKey = secret

	fmt.Println("\n--- Server Configuration ---")
	a.HTTPAddr = prompt(reader, "HTTP address", "localhost:8080")

	fmt.Println("\n--- Database Configuration ---")
	a.DBDriver = prompt(reader, "SQLite driver (sqlite/sqlite3)", config.DefaultDatabaseDriver)
	a.DBPath = prompt(reader, "SQLite database path", defaultDbPath)

	fmt.Println("\n--- Desk Configuration ---")
	a.ComplexName = prompt(reader, "Complex name", config.DefaultComplexName)
	a.SessionTTL = prompt(reader, "Session lifetime (e.g. 12h, empty for no expiry)", "")
	a.AllowPasswordReset = yes(prompt(reader, "Allow password reset by username?", "yes"))

	fmt.Println("\n--- Tailscale Configuration ---")
	a.TailscaleEnabled = yes(prompt(reader, "Enable Tailscale?", "no"))
	if a.TailscaleEnabled {
		a.TailscaleHostname = prompt(reader, "Tailscale hostname", config.DefaultTailscaleHost)
		a.TailscaleAuthKey = prompt(reader, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		a.TailscaleEphemeral = yes(prompt(reader, "Ephemeral node?", "no"))
	}

	fmt.Println("\n--- Logging and Metrics ---")
	a.LogLevel = prompt(reader, "Log level (debug/info/warn/error)", "info")
	a.LogFormat = prompt(reader, "Log format (text/json)", "text")
	a.MetricsEnabled = yes(prompt(reader, "Enable Prometheus metrics?", "no"))

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Holds the secret key
	if err := os.WriteFile(outputFile, []byte(renderConfig(a)), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(a.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  frontdesk serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
