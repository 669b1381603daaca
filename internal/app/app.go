package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amaumene/syncarr/internal/config"
	"github.com/amaumene/syncarr/internal/domain"
	"github.com/amaumene/syncarr/internal/handler"
	"github.com/amaumene/syncarr/internal/service"
	"github.com/amaumene/syncarr/internal/storage"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	Cfg       *config.Config
	Repos     service.Repositories
	Snapshot  *service.SnapshotService
	Reconcile *service.ReconcileService
	Library   *service.LibraryService

	server    *http.Server
	store     *bolthold.Store
	scheduler *Scheduler
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	configureLogging(cfg.LogLevel)

	store, err := bolthold.Open(cfg.DBPath(), cfg.DBFilePermissions, nil)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	app := &App{Cfg: cfg, store: store}
	if err := app.wireServices(); err != nil {
		store.Close()
		return nil, fmt.Errorf("wiring services: %w", err)
	}
	return app, nil
}

func configureLogging(level string) {
	log.SetOutput(os.Stderr)

	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

func (a *App) wireServices() error {
	a.Repos = service.Repositories{
		Media:      storage.NewMediaRepository(a.store),
		Progress:   storage.NewProgressRepository(a.store),
		Lists:      storage.NewListRepository(a.store),
		ListItems:  storage.NewListItemRepository(a.store),
		Settings:   storage.NewSettingsRepository(a.store),
		Tombstones: storage.NewTombstoneRepository(a.store),
		Meta:       storage.NewSyncMetaRepository(a.store),
	}

	language := service.NewSystemLanguageResolver()
	resolver := service.NewListResolver(a.Repos.Lists, a.Repos.ListItems, a.Repos.Tombstones)
	merger := service.NewSettingsMerger(a.Repos.Settings, language)

	a.Snapshot = service.NewSnapshotService(a.Repos)
	a.Reconcile = service.NewReconcileService(a.Repos, resolver, merger)
	a.Library = service.NewLibraryService(a.Repos, language)
	a.scheduler = NewScheduler(a.Cfg, a.Snapshot)

	if err := a.initializeSettings(context.Background()); err != nil {
		return err
	}

	a.setupHTTPServer()
	return nil
}

// initializeSettings stamps every namespace on first open so that snapshot
// merges compare against the install time rather than treating untouched
// namespaces as absent.
func (a *App) initializeSettings(ctx context.Context) error {
	settings, err := a.Repos.Settings.Load(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	namespaces := []struct {
		ns        domain.Namespace
		updatedAt *int64
	}{
		{domain.NamespacePlayback, &settings.Playback.UpdatedAt},
		{domain.NamespaceSourceFilters, &settings.SourceFilters.UpdatedAt},
		{domain.NamespaceStreaming, &settings.Streaming.UpdatedAt},
		{domain.NamespaceLanguage, &settings.Language.UpdatedAt},
		{domain.NamespaceTheme, &settings.Theme.UpdatedAt},
	}

	for _, entry := range namespaces {
		if *entry.updatedAt != 0 {
			continue
		}
		*entry.updatedAt = now
		if err := a.Repos.Settings.SaveNamespace(ctx, entry.ns, settings); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) setupHTTPServer() {
	httpHandler := handler.NewHTTPHandler(a.Repos, a.Snapshot, a.Reconcile)

	mux := http.NewServeMux()
	httpHandler.RegisterRoutes(mux)

	a.server = &http.Server{
		Addr:    a.Cfg.ServerPort,
		Handler: mux,
	}
}

// Run starts the HTTP server and the snapshot scheduler and blocks until
// the context is cancelled or a shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.scheduler.RunPeriodically(ctx)
	go a.startServer()

	return a.waitForShutdown(ctx, cancel)
}

func (a *App) startServer() {
	log.WithFields(log.Fields{
		"component": "server",
		"address":   a.Cfg.ServerPort,
	}).Info("http server listening")

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithFields(log.Fields{
			"component": "server",
			"error":     err,
		}).Fatal("http server failed to start")
	}
}

func (a *App) waitForShutdown(ctx context.Context, cancel context.CancelFunc) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		log.WithField("reason", "context_cancelled").Info("initiating graceful shutdown")
	case sig := <-sigChan:
		log.WithField("signal", sig).Info("received shutdown signal")
	}

	cancel()
	return a.shutdown()
}

func (a *App) shutdown() error {
	log.Info("graceful shutdown started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.WithFields(log.Fields{
			"component": "server",
			"error":     err,
		}).Error("http server shutdown failed")
	}

	return a.Close()
}

// Close releases the database. Safe to call when Run was never started.
func (a *App) Close() error {
	if err := a.store.Close(); err != nil {
		log.WithFields(log.Fields{
			"component": "database",
			"error":     err,
		}).Error("database connection close failed")
		return err
	}
	return nil
}
