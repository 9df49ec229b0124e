// Package app wires the components shared by the books CLI and the API
// server into one browsing session.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"books-search/internal/config"
	"books-search/internal/infra/adapter/persistence/postgres"
	"books-search/internal/infra/adapter/persistence/sqlite"
	"books-search/internal/infra/booksapi"
	"books-search/internal/infra/db"
	"books-search/internal/infra/imagecache"
	"books-search/internal/infra/worker"
	pkgconfig "books-search/internal/pkg/config"
	"books-search/internal/repository"
	"books-search/internal/usecase/browse"
	"books-search/internal/usecase/reconcile"
	"books-search/internal/usecase/settings"
)

// Component config metrics register with the default Prometheus registry,
// so they are created once per process.
var (
	catalogConfigMetrics = sync.OnceValue(func() *pkgconfig.Metrics {
		return pkgconfig.NewMetrics("books_api")
	})
	imageConfigMetrics = sync.OnceValue(func() *pkgconfig.Metrics {
		return pkgconfig.NewMetrics("books_images")
	})
	poolMetrics = sync.OnceValue(worker.NewPoolMetrics)
)

// App is a fully wired browsing session.
type App struct {
	Config  *config.AppConfig
	Logger  *slog.Logger
	DB      *sql.DB
	Driver  string
	Store   *settings.Store
	Catalog *booksapi.Client
	Images  *imagecache.Cache
	Loader  *imagecache.Loader
	Pool    *worker.Pool
	Session *browse.Session
}

// New opens the settings database, applies the configured setting defaults
// and starts a session.
func New(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	identity, err := reconcile.ParseIdentity(cfg.Session.Identity)
	if err != nil {
		return nil, err
	}
	kind, ok := browse.ParsePresentationKind(cfg.Session.Presentation)
	if !ok {
		return nil, fmt.Errorf("unknown presentation %q", cfg.Session.Presentation)
	}

	conn, driver, err := db.Open(ctx, cfg.Storage.SettingsDSN)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, DB: conn, Driver: driver}
	if err := a.init(ctx, identity, kind); err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Info("session ready",
		slog.String("driver", driver),
		slog.String("identity", identity.String()),
		slog.String("presentation", kind.String()))
	return a, nil
}

func (a *App) init(ctx context.Context, identity reconcile.Identity, kind browse.PresentationKind) error {
	if err := db.MigrateUp(a.DB, a.Driver); err != nil {
		return fmt.Errorf("migrate settings database: %w", err)
	}

	a.Store = settings.NewStore(settingsRepo(a.DB, a.Driver), a.Logger)
	defaults, err := seedEntries(a.Config.Defaults)
	if err != nil {
		return err
	}
	if err := a.Store.Seed(ctx, defaults...); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	apiCfg, _ := booksapi.LoadConfigFromEnv(a.Logger, catalogConfigMetrics())
	a.Catalog = booksapi.NewClient(*apiCfg, a.Logger)

	imgCfg, _ := imagecache.LoadConfigFromEnv(a.Logger, imageConfigMetrics())
	a.Images = imagecache.New(int64(imgCfg.CacheMB) << 20)
	a.Loader = imagecache.NewLoader(a.Images, *imgCfg, a.Logger)

	poolCfg, _ := worker.LoadConfigFromEnv(a.Logger, poolMetrics())
	a.Pool = worker.NewPool(*poolCfg, poolMetrics(), a.Logger)

	ctl, err := browse.NewController(browse.Config{
		Catalog:  a.Catalog,
		Store:    a.Store,
		Runner:   a.Pool,
		Images:   a.Images,
		Identity: identity,
		Logger:   a.Logger,
	})
	if err != nil {
		return err
	}
	a.Session, err = browse.NewSession(ctl, kind, a.Config.Server.SettleTimeout)
	if err != nil {
		ctl.Close()
		return err
	}
	return nil
}

func settingsRepo(conn *sql.DB, driver string) repository.SettingsRepository {
	if driver == db.DriverPostgres {
		return postgres.NewSettingsRepo(conn)
	}
	return sqlite.NewSettingsRepo(conn)
}

// seedEntries converts configured defaults, sorted by key.
func seedEntries(defaults map[string]string) ([]settings.Entry, error) {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]settings.Entry, 0, len(names))
	for _, name := range names {
		key, err := settings.ParseKey(name)
		if err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
		entries = append(entries, settings.Entry{Key: key, Value: defaults[name]})
	}
	return entries, nil
}

// Ready reports whether the settings database answers.
func (a *App) Ready(ctx context.Context) error {
	return db.Ping(ctx, a.DB)
}

// Close stops the session, drains the worker pool and closes the database.
func (a *App) Close() error {
	var errs []error
	if a.Session != nil {
		a.Session.Close()
	}
	if a.Pool != nil {
		if err := a.Pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close worker pool: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close settings database: %w", err))
		}
	}
	return errors.Join(errs...)
}
