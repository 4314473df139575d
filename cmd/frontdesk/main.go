// ABOUTME: Entry point for the frontdesk residential visitor management server
// ABOUTME: Dispatches serve, init, adduser and health subcommands

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/frontdesk/internal/config"
	"github.com/2389/frontdesk/internal/server"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  __                 _      _           _
 / _|_ __ ___  _ __ | |_ __| | ___  ___| | __
| |_| '__/ _ \| '_ \| __/ _' |/ _ \/ __| |/ /
|  _| | | (_) | | | | || (_| |  __/\__ \   <
|_| |_|  \___/|_| |_|\__\__,_|\___||___/_|\_\
`

// getConfigPath returns the path to the config file.
// Priority: FRONTDESK_CONFIG env var > XDG_CONFIG_HOME/frontdesk/frontdesk.yaml > ~/.config/frontdesk/frontdesk.yaml
func getConfigPath() string {
	if envPath := os.Getenv("FRONTDESK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "frontdesk.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "frontdesk", "frontdesk.yaml")
}

// getDataPath returns the directory holding the database by default.
// Priority: XDG_DATA_HOME/frontdesk > ~/.local/share/frontdesk
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "frontdesk")
}

func usage() {
	fmt.Println("Usage: frontdesk <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                                      Start the web server")
	fmt.Println("  init                                       Create a new config file interactively")
	fmt.Println("  adduser --username U --password P [--role R]  Add a desk operator account")
	fmt.Println("  health                                     Check server health")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "adduser":
		err = runAddUser(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s (%s)\n", cfg.Database.Path, cfg.Database.Driver)

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	}
	if cfg.Metrics.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Metrics:   %s\n", cfg.Metrics.Path)
	}

	fmt.Println()

	logger.Info("starting frontdesk",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"db_path", cfg.Database.Path,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if srv.CreatedDefaultUser() {
		yellow.Printf("    Created default user -> username: %s, password: %s\n\n",
			cfg.Auth.DefaultUsername, cfg.Auth.DefaultPassword)
	}

	return srv.Run(ctx)
}
