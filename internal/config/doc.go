// Package config loads runtime configuration for the DevNest client and the
// reference server.
//
// Sources & precedence (later wins)
//
//  1. Built-in defaults (DefaultClient, DefaultServer).
//  2. Optional TOML file. Only keys present in the file are applied.
//  3. Environment variables (DEVNEST_*).
//  4. Command-line flags, applied by the cmd packages.
//
// # Client TOML
//
//	server    = "http://localhost:8080"
//	db        = "devnest-client.db"
//	timeout   = "30s"
//	log_level = "warn"
//
// # Server TOML
//
//	addr                = ":8080"
//	db                  = "devnest-server.db"
//	jwt_secret          = "change-me"
//	token_ttl           = "24h"
//	auth_response_style = "nested"
//	rate_limit          = 20
//	rate_window         = "1m"
package config
