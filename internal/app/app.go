package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crypton-club/clubdata/internal/adapter"
	"github.com/crypton-club/clubdata/internal/api"
	"github.com/crypton-club/clubdata/internal/club"
	"github.com/crypton-club/clubdata/internal/config"
	"github.com/crypton-club/clubdata/internal/localcache"
	"github.com/crypton-club/clubdata/internal/logger"
	"github.com/crypton-club/clubdata/internal/prefs"
	"github.com/crypton-club/clubdata/internal/server"
	"github.com/crypton-club/clubdata/internal/state"
	"github.com/crypton-club/clubdata/internal/ui"
)

// Runtime is the assembled data layer: configuration, the store and the
// resources behind its adapters.
type Runtime struct {
	Config config.Config
	Store  *state.Store
	Log    *zap.SugaredLogger

	cache *localcache.Cache
}

// Open builds the adapters for cfg.Strategy, creates the store and loads
// every collection. A collection that fails to load stays empty and is
// reported through the store's load status; Open itself only fails when
// the strategy cannot be set up.
func Open(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*Runtime, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	strategy, err := adapter.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	ids, err := club.NewIDGenerator(cfg.IDScheme)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, Log: log}
	deps := adapter.Deps{Logger: log}
	if strategy.NeedsClient() {
		client, err := api.NewClient(cfg.APIBase, cfg.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("init api client: %w", err)
		}
		deps.Client = client
	}
	if strategy.NeedsCache() {
		cache, err := localcache.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open local cache: %w", err)
		}
		deps.Cache = cache
		rt.cache = cache
	}

	adapters, err := adapter.New(strategy, deps)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Store = state.NewStore(adapters, state.Options{
		IDs:            ids,
		Logger:         log.Named("store"),
		PersistTimeout: cfg.RequestTimeout,
	})

	if err := rt.Store.LoadAll(ctx); err != nil {
		log.Warnw("initial load incomplete", "strategy", strategy, "error", err)
	} else {
		log.Infow("collections loaded", "strategy", strategy)
	}
	return rt, nil
}

// Close releases the local cache, if any.
func (r *Runtime) Close() error {
	if r == nil || r.cache == nil {
		return nil
	}
	return r.cache.Close()
}

// BrowseOptions configure the TUI.
type BrowseOptions struct {
	PrefsPath  string // empty uses ~/.config/clubdata/prefs.toml
	Editor     bool
	RetryEvery int // seconds; zero uses the default
}

// Browse runs the TUI until the user quits or ctx is cancelled. Logs go to
// cfg.Log.File so they do not tear the screen.
func Browse(ctx context.Context, cfg config.Config, opts BrowseOptions) error {
	logFile, err := logger.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	base := logger.New(cfg.Log.Level, logger.Format(cfg.Log.Format), logFile)
	defer func() { _ = base.Sync() }()
	log := base.Sugar()

	rt, err := Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	interval := defaultRetryInterval
	if opts.RetryEvery > 0 {
		interval = secondsToDuration(opts.RetryEvery)
	}
	StartReloader(ctx, rt.Store, log.Named("reloader"), interval)

	userPrefs := prefs.Load(opts.PrefsPath)
	return ui.Run(ctx, ui.Options{
		Store:      rt.Store,
		Strategy:   cfg.Strategy,
		Editor:     opts.Editor,
		ThemeName:  userPrefs.Theme,
		Collection: userPrefs.Collection,
		PrefsPath:  opts.PrefsPath,
	})
}

// Serve runs the REST backend described by cfg.Server.
func Serve(ctx context.Context, cfg config.Config, log *zap.Logger, seed bool) error {
	if log == nil {
		log = zap.NewNop()
	}
	ids, err := club.NewIDGenerator(cfg.IDScheme)
	if err != nil {
		return err
	}
	repo, err := server.OpenRepository(server.Backend(cfg.Server.Backend), cfg.Server.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	if seed {
		if err := server.Seed(ctx, repo); err != nil {
			return fmt.Errorf("seed repository: %w", err)
		}
	}
	log.Sugar().Infow("serving club data", "backend", cfg.Server.Backend, "data_dir", cfg.Server.DataDir)
	return server.New(repo, server.Options{Logger: log, IDs: ids}).Run(ctx, cfg.Server.Bind)
}

// Migrate copies every resource between two backends in cfg.Server.DataDir.
func Migrate(ctx context.Context, cfg config.Config, from, to server.Backend) (map[club.Resource]int, error) {
	if from == to {
		return nil, fmt.Errorf("source and destination backend are both %q", from)
	}
	src, err := server.OpenRepository(from, cfg.Server.DataDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()
	dst, err := server.OpenRepository(to, cfg.Server.DataDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = dst.Close() }()

	return server.Copy(ctx, dst, src)
}
