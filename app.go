package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"search-launcher/config"
	"search-launcher/kv"
	"search-launcher/logger"
	"search-launcher/profile"
	"search-launcher/search"
	"search-launcher/tab"
)

// app holds what every command needs: the resolved config, a logger and a
// loaded profile store.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	store *profile.Store
	close func() error
}

// loadConfig layers the persistent flags over config.Load.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if storageFlag != "" {
		cfg.Storage.Backend = storageFlag
	}
	if ephemeral {
		cfg.Storage.Backend = config.BackendMemory
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	return cfg, cfg.Validate()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, err
	}

	gw, closeFn, err := openGateway(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	store := profile.NewStore(gw,
		profile.WithKey(cfg.Storage.Key),
		profile.WithLogger(log.Named("profile")),
	)
	if _, err := store.Load(ctx); err != nil {
		pterm.Warning.Printfln("Default profiles could not be saved: %v", err)
	}

	return &app{cfg: cfg, log: log, store: store, close: closeFn}, nil
}

func (a *app) Close() {
	if err := a.close(); err != nil {
		a.log.Warn("closing storage failed", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) builder() search.Builder {
	return search.Builder{BaseURL: a.cfg.Search.BaseURL}
}

func (a *app) dispatcher(host search.Host) *search.Dispatcher {
	return &search.Dispatcher{
		Store:   a.store,
		Host:    host,
		Builder: a.builder(),
		Domain:  a.cfg.Search.Domain,
		Log:     a.log.Named("search"),
	}
}

// openGateway builds the storage backend. The returned func releases it.
func openGateway(ctx context.Context, s config.Storage) (kv.Gateway, func() error, error) {
	noop := func() error { return nil }
	switch s.Backend {
	case config.BackendFile:
		return kv.NewFileGateway(s.Dir), noop, nil
	case config.BackendMemory:
		return kv.NewMemoryGateway(), noop, nil
	case config.BackendKeyring:
		return kv.NewKeyringGateway(s.KeyringService), noop, nil
	case config.BackendPostgres:
		db, err := kv.OpenPostgres(ctx, s.DSN)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewPostgresGateway(db), db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", s.Backend)
}

// hostFor picks the navigation host for mode. Without a relay (tabs == nil)
// only the desktop browser is available.
func hostFor(mode string, tabs *tab.Manager, open func(string) error) search.Host {
	desktop := search.DesktopHost{Open: open}
	if tabs == nil {
		return desktop
	}
	switch mode {
	case config.NavigationRelay:
		return tabs
	case config.NavigationDesktop:
		return desktop
	}
	return search.FallbackHost{Primary: tabs, Secondary: desktop}
}

// resolveProfile finds a profile by id, then by case-insensitive name.
func resolveProfile(store *profile.Store, ref string) (profile.Profile, error) {
	if p, ok := store.Get(ref); ok {
		return p, nil
	}
	ref = strings.TrimSpace(ref)
	p, ok := lo.Find(store.State().Profiles, func(p profile.Profile) bool {
		return strings.EqualFold(p.Name, ref)
	})
	if !ok {
		return profile.Profile{}, fmt.Errorf("%w: %s", profile.ErrNotFound, ref)
	}
	return p, nil
}
