package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fanhop/internal/adapters/http/api"
	"github.com/okian/fanhop/internal/adapters/http/site"
	"github.com/okian/fanhop/internal/adapters/http/swagger"
	"github.com/okian/fanhop/internal/adapters/storage"
	"github.com/okian/fanhop/internal/adapters/storage/s3store"
	"github.com/okian/fanhop/internal/adapters/storage/sqlite"
	service "github.com/okian/fanhop/internal/app"
	"github.com/okian/fanhop/internal/config"
	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/pkg/logger"
	"github.com/okian/fanhop/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("fanhop: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(format)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, log.Named("storage"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "closing model store", logger.Error(err))
		}
	}()

	svc := service.New(catalog, store,
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.EventQueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithBaseURL(cfg.BaseURL),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop(context.Background())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           buildHandler(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreDriver),
			logger.String("default_edition", catalog.DefaultID()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

// loadCatalog merges the embedded editions with any found in EditionsDir.
func loadCatalog(cfg *config.Config) (*edition.Catalog, error) {
	eds, err := edition.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded editions: %w", err)
	}
	if cfg.EditionsDir != "" {
		extra, err := edition.LoadDir(cfg.EditionsDir)
		if err != nil {
			return nil, fmt.Errorf("load editions from %s: %w", cfg.EditionsDir, err)
		}
		eds = append(eds, extra...)
	}
	return edition.NewCatalog(cfg.DefaultEdition, eds...)
}

// openStore opens the configured model store behind metrics and logging.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		store = storage.NewMemory()
	case config.DriverSQLite:
		store, err = sqlite.Open(ctx, cfg.SQLitePath, sqlite.WithLogger(log))
	case config.DriverS3:
		store, err = s3store.Open(ctx, cfg.S3Bucket, s3store.WithPrefix(cfg.S3Prefix))
	default:
		err = fmt.Errorf("%w: unknown store_driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	return storage.Instrument(store, cfg.StoreDriver, log), nil
}

// buildHandler registers the landing page, docs and API routes.
func buildHandler(ctx context.Context, cfg *config.Config, svc *service.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	site.Register(ctx, mux, svc.Catalog())
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, cfg.MaxLeaderboardLimit,
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithLogger(log.Named("http")),
	)
	apiServer.Register(ctx, mux)
	return apiServer.Handler(mux)
}

// startSystemMetricsUpdater refreshes the runtime gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	updateSystemMetrics()
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
