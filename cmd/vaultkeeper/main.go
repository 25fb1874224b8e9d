package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nvasilev/vaultkeeper/internal/adapter/driven/backup"
	"github.com/nvasilev/vaultkeeper/internal/adapter/driven/mongodb"
	httphandler "github.com/nvasilev/vaultkeeper/internal/adapter/driving/http"
	"github.com/nvasilev/vaultkeeper/internal/application"
	"github.com/nvasilev/vaultkeeper/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_name", cfg.DBName,
		"backup_dir", cfg.BackupDir,
		"export_path", cfg.ExportPath,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Connect to the document store (fail fast if it is unreachable).
	db, err := mongodb.NewDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if closeErr := db.Close(closeCtx); closeErr != nil {
			slog.Error("error closing store connection", "error", closeErr)
		}
	}()
	slog.Info("store connected", "db_name", cfg.DBName)

	// 4. Prepare the backup directory before any mutation can need it.
	if err := backup.EnsureDir(cfg.BackupDir); err != nil {
		return err
	}
	slog.Info("backup directory ready", "dir", cfg.BackupDir)

	// 5. Wire adapters and application services.
	entryStore := mongodb.NewEntryRepo(db)
	backupStore := backup.NewWriter(cfg.BackupDir, entryStore)
	exportSvc := application.NewExportService(entryStore, cfg.ExportPath)
	statsSvc := application.NewStatsService(entryStore)

	// 6. Seed the entries gauge so metrics are correct from the first scrape.
	if count, err := entryStore.Count(ctx); err == nil {
		httphandler.EntriesTotal.Set(float64(count))
	} else {
		slog.Warn("could not seed entries gauge", "error", err)
	}

	// 7. Create HTTP handler and router.
	h := httphandler.NewHandler(entryStore, backupStore, exportSvc, statsSvc, config.Version, slog.Default())
	router := httphandler.NewRouter(h, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 8. Wait for a shutdown signal or a server failure (e.g. bind error).
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
