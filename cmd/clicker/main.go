// Command clicker is a terminal idle clicker driven by the progression engine.
//
// Configuration comes from the environment (and an optional .env file):
// CATALOG_PATH, SAVE_BACKEND, SAVE_DIR, SAVE_SLOT, SQLITE_PATH, DB_*,
// UNLOCK_WEBHOOK_URL, METRICS_ADDR, AUTOSAVE_INTERVAL, LOG_LEVEL, LOG_FORMAT.
// SIGHUP reloads the catalog; sessions opened afterwards use it.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AccelByte/extend-idle-progression/pkg/cache"
	"github.com/AccelByte/extend-idle-progression/pkg/client"
	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
	"github.com/AccelByte/extend-idle-progression/pkg/metrics"
	"github.com/AccelByte/extend-idle-progression/pkg/session"
)

const (
	flushInterval   = time.Second
	shutdownTimeout = 10 * time.Second
	logFileName     = "clicker.log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "clicker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return err
	}

	// the terminal belongs to the UI, so logs go to a file
	logOut, closeLog, err := openLogFile(cfg.SaveDir)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logger.New(cfg.Log, logOut)

	catalog, err := config.LoadCatalogOrDefault(cfg.CatalogPath, log)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	catalogCache := cache.NewInMemoryCatalogCache(catalog, cfg.CatalogPath, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open save backend: %w", err)
	}
	defer closeRepo()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	manager := session.NewManager(repo, catalogCache, log,
		session.WithPublisher(newPublisher(cfg, log), client.DefaultRetryConfig()),
		session.WithMetrics(recorder),
	)

	s, err := manager.Open(ctx, cfg.SaveSlot)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           newAdminRouter(manager, repo, registry, log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("Admin server listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				log.Error("Admin server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}

	bgCtx, cancelBackground := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		background(bgCtx, manager, s.ID, cfg.AutosaveInterval, log)
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		defer wg.Done()
		reloadOnSignal(bgCtx, hup, manager, log)
	}()

	newUI(screen, manager, s, log).run(ctx)

	screen.Fini()
	cancelBackground()
	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := manager.CloseAll(closeCtx); err != nil {
		return fmt.Errorf("failed to save on exit: %w", err)
	}
	log.Info("Goodbye", "slot", cfg.SaveSlot)
	return nil
}

// background publishes fired unlocks and autosaves off the UI loop. An
// autosave interval of zero disables autosave.
func background(ctx context.Context, manager *session.Manager, id string, autosave time.Duration, log *slog.Logger) {
	flush := time.NewTicker(flushInterval)
	defer flush.Stop()

	var saveC <-chan time.Time
	if autosave > 0 {
		saveTicker := time.NewTicker(autosave)
		defer saveTicker.Stop()
		saveC = saveTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-flush.C:
			if _, err := manager.Flush(ctx, id); err != nil {
				log.Warn("Flush skipped", "error", err)
			}
		case <-saveC:
			if err := manager.SaveAll(ctx); err != nil {
				log.Warn("Autosave failed", "error", err)
			}
		}
	}
}

// reloadOnSignal reloads the catalog on every signal received until ctx ends.
// A failed reload keeps the current catalog.
func reloadOnSignal(ctx context.Context, sig <-chan os.Signal, manager *session.Manager, log *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			if err := manager.ReloadCatalog(); err == nil {
				log.Info("Catalog reloaded on SIGHUP")
			}
		}
	}
}

func newPublisher(cfg *config.AppConfig, log *slog.Logger) client.UnlockPublisher {
	if cfg.UnlockWebhookURL == "" {
		return client.NewLogUnlockPublisher(log)
	}
	return client.NewHTTPUnlockPublisher(cfg.UnlockWebhookURL, nil, log)
}

func openLogFile(dir string) (io.Writer, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
