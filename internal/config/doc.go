// Package config handles configuration loading for frontdesk.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion. Every field has a default, so a missing file starts the desk on
// a local SQLite database with the bootstrap admin account.
//
// # Configuration File
//
// Location (in order):
//
//  1. Path from FRONTDESK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/frontdesk/frontdesk.yaml
//  3. ~/.config/frontdesk/frontdesk.yaml
//
// A file whose name ends in .toml is decoded as TOML. A .env file in the
// working directory is loaded before expansion.
//
// # Environment Variable Expansion
//
//	auth:
//	  secret_key: "${FRONTDESK_SECRET_KEY}"
//
// FRONTDESK_DB_PATH, FRONTDESK_HTTP_ADDR and FRONTDESK_SECRET_KEY override
// the file directly.
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
//	database:
//	  driver: "sqlite"        # or "sqlite3" (cgo)
//	  path: "visitors.db"
//
//	auth:
//	  secret_key: "..."       # signs the flash notice cookie
//	  session_ttl: ""         # empty = sessions never expire
//	  default_username: "admin"
//	  default_password: "admin123"
//	  allow_password_reset: true
//
//	desk:
//	  complex_name: "Skyline Heights Residency"
//	  hero_image_url: "https://..."
//
//	logging:
//	  level: "info"           # debug, info, warn, error
//	  format: "text"          # text, json
//
//	metrics:
//	  enabled: false
//	  path: "/metrics"
//
//	tailscale:
//	  enabled: false
//	  hostname: "frontdesk"
//	  auth_key: "${TS_AUTHKEY}"
//	  state_dir: ""
//	  ephemeral: false
package config
