// Package config loads the queuecall client configuration.
//
// # Sources
//
// Values are resolved in this order, later sources winning:
//
//  1. Built-in defaults (see Default)
//  2. The TOML file, ~/.config/queuecall/config.toml unless a path is given
//  3. A .env file in the working directory, if present
//  4. QUEUECALL_API_TOKEN, QUEUECALL_JOURNAL_DSN and OTEL_EXPORTER_OTLP_ENDPOINT
//
// A missing config file is not an error. Blank values fall back to defaults
// and tilde paths are expanded.
//
// # TOML Format
//
//	api_base = "https://filavirtual2.debmedia.com/api/v1"
//	queue_id = "12083"
//	branch_id = "10618"
//	api_token = "..."
//	poll_interval_ms = 3000
//	request_timeout_ms = 0
//	blocked_domains = ["gmail.com", "hotmail.com", "yahoo.com", "outlook.com", "live.com"]
//	require_identifier = false
//	surface = "desktop"          # or "mobile"
//	video_call_user = "mobile"
//	log_dir = "~/.local/share/queuecall/logs"
//	journal_dsn = ""             # Postgres DSN; empty disables the journal
//	otlp_endpoint = ""           # OTLP/gRPC collector; empty disables tracing
//
// An explicit empty blocked_domains list accepts every email domain.
//
// # Validation
//
// Load validates the result with go-playground/validator. An API token is
// required and poll_interval_ms must be at least 250.
package config
