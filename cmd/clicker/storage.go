package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/db"
	"github.com/AccelByte/extend-idle-progression/pkg/repository"
)

// openRepository builds the save backend selected by SAVE_BACKEND. The returned
// close func is always safe to call.
func openRepository(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (repository.SnapshotRepository, func(), error) {
	noop := func() {}

	switch cfg.SaveBackend {
	case config.SaveBackendFile:
		log.Info("Using file saves", "dir", cfg.SaveDir)
		return repository.NewFileSnapshotRepository(cfg.SaveDir, log), noop, nil

	case config.SaveBackendSQLite:
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		repo, err := repository.NewSQLiteSnapshotRepository(ctx, conn, log)
		if err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		log.Info("Using SQLite saves", "path", cfg.SQLitePath)
		return repo, func() { _ = conn.Close() }, nil

	case config.SaveBackendPostgres:
		dbCfg := db.NewConfigFromEnv()
		conn, err := db.Connect(dbCfg)
		if err != nil {
			return nil, noop, err
		}
		repo := repository.NewPostgresSnapshotRepository(conn, log)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		log.Info("Using PostgreSQL saves", "host", dbCfg.Host, "database", dbCfg.Database)
		return repo, func() { _ = conn.Close() }, nil
	}

	return nil, noop, fmt.Errorf("unsupported save backend %q", cfg.SaveBackend)
}
