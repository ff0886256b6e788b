package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/folioapp/folio/internal/api"
	"github.com/folioapp/folio/internal/collection"
	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/logging"
	"github.com/folioapp/folio/internal/query"
	"github.com/folioapp/folio/internal/session"
	"github.com/folioapp/folio/internal/ui"
)

// Options configure the Folio application.
type Options struct {
	ConfigPath   string
	SessionPath  string // empty uses default ~/.config/folio/session.toml
	APIBaseURL   string // overrides config and environment when set
	RefreshEvery int    // seconds; zero uses the configured value
	Verbose      bool   // debug-level file logging
}

// Run boots the Folio TUI until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.APIBaseURL != "" {
		cfg.APIBaseURL = opts.APIBaseURL
	}
	if opts.RefreshEvery > 0 {
		cfg.RefreshSeconds = opts.RefreshEvery
	}

	level := logrus.InfoLevel
	if opts.Verbose {
		level = logrus.DebugLevel
	}
	log := logging.New(cfg.LogDir, level)

	sessions := session.NewManager(opts.SessionPath)

	client, err := api.NewClient(cfg.APIBaseURL, sessions)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	cache := query.NewCache()
	queries := query.New(client, cache)
	store := &collection.Store{}
	coordinator := collection.NewCoordinator(store, client, cache, log)
	selection := &collection.Selection{}

	interval := time.Duration(cfg.RefreshSeconds) * time.Second
	StartRefresher(ctx, store, queries, coordinator.Changed(), interval, log)

	// Populate the store before the UI starts; a missing token just means
	// the UI opens on the login view.
	Refresh(ctx, store, queries, log)

	log.WithFields(logrus.Fields{
		"api":     cfg.APIBaseURL,
		"refresh": cfg.RefreshSeconds,
	}).Info("folio starting")

	return ui.Run(ctx, ui.Options{
		Client:      client,
		Queries:     queries,
		Store:       store,
		Coordinator: coordinator,
		Selection:   selection,
		Sessions:    sessions,
		Config:      cfg,
		Log:         log,
	})
}
