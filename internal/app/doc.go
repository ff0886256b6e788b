// Package app is the composition root for the Folio application.
//
// # Overview
//
// Run wires configuration, logging, the persisted session, the API client,
// the query cache, the collection store and write coordinator, and the TUI
// into a running program. It blocks until the user quits or the context is
// cancelled.
//
// # Startup sequence
//
//  1. Load config from ~/.config/folio/config.toml (env and flags override)
//  2. Open the rotated log file under the configured log directory
//  3. Restore the persisted session token, if any
//  4. Build the API client, query cache, store, and coordinator
//  5. Launch the background refresher goroutine
//  6. Prime the store with an initial fetch and start the TUI (blocks)
//
// # Refresher
//
// The refresher listens on the coordinator's change channel and refetches
// the collection after every confirmed write. When a refresh interval is
// configured it also refetches periodically, stretching the interval
// exponentially while the backend keeps failing (capped at two minutes).
// A missing session token is a normal logged-out state, not a failure.
//
// Fatal errors (returned from Run): unreadable config, invalid API base
// URL. Everything after startup is recoverable: fetch failures are recorded
// on the store and the previous data stays visible.
package app
