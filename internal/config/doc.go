// Package config handles loading and parsing Folio configuration.
//
// # Overview
//
// Folio reads an optional TOML file at ~/.config/folio/config.toml for the
// backend base URL, the default price-lookup country, the refresh interval,
// and the log directory. A missing file is not an error; defaults let the
// client work against a local backend out of the box.
//
// # Resolution order
//
//  1. Explicit path (--config flag), otherwise the default location
//  2. Missing file: hardcoded defaults
//  3. Environment overrides (FOLIO_API_URL, FOLIO_COUNTRY) win over the
//     file; a .env file in the working directory is honored at startup
//
// # TOML format
//
// Example config.toml:
//
//	api_base_url = "http://localhost:8080/api"
//	country = "US"
//	refresh_seconds = 0   # 0 = refetch only after writes
//	log_dir = "~/.local/share/folio"
//
// All fields are optional. Tilde expansion is performed automatically.
//
// The package is read-only and stateless: configuration is loaded once at
// startup and returned as an immutable Config struct.
package config
