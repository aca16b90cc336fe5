// Package app wires configuration, the API client, and the controllers
// into a running chyrpal session.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/chyrpal/chyrpal/internal/chyrp"
	"github.com/chyrpal/chyrpal/internal/config"
	"github.com/chyrpal/chyrpal/internal/feed"
	"github.com/chyrpal/chyrpal/internal/interact"
	"github.com/chyrpal/chyrpal/internal/prefs"
	"github.com/chyrpal/chyrpal/internal/session"
	"github.com/chyrpal/chyrpal/internal/ui"
)

// Options configure the chyrpal application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/chyrpal/prefs.toml
	Server       string // overrides the configured API base when set
	RefreshEvery int    // seconds; zero uses the configured value
}

// Run boots the chyrpal TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Server != "" {
		cfg.APIBase = opts.Server
	}
	if opts.RefreshEvery > 0 {
		cfg.RefreshSeconds = opts.RefreshEvery
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	client, err := chyrp.NewClient(cfg.APIBase)
	if err != nil {
		return fmt.Errorf("init chyrp client: %w", err)
	}

	store := &session.Store{}

	// Resolve the session before the UI starts so the first frame
	// already shows who the user is.
	store.Probe(ctx, client)

	uiOpts := ui.Options{
		Context:      ctx,
		API:          client,
		Session:      store,
		Feed:         feed.NewController(client, cfg.PageSize),
		Interact:     interact.NewController(client, store),
		Config:       &cfg,
		RefreshEvery: time.Duration(cfg.RefreshSeconds) * time.Second,
		ThemeName:    userPrefs.Theme,
		PrefsPath:    opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}
