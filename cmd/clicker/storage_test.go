package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
	"github.com/AccelByte/extend-idle-progression/pkg/repository"
)

func TestOpenRepository(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("file", func(t *testing.T) {
		cfg := &config.AppConfig{SaveBackend: config.SaveBackendFile, SaveDir: dir}
		repo, closeRepo, err := openRepository(ctx, cfg, logger.Discard())
		require.NoError(t, err)
		defer closeRepo()
		assert.IsType(t, &repository.FileSnapshotRepository{}, repo)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.AppConfig{SaveBackend: config.SaveBackendSQLite, SQLitePath: filepath.Join(dir, "db", "saves.db")}
		repo, closeRepo, err := openRepository(ctx, cfg, logger.Discard())
		require.NoError(t, err)
		defer closeRepo()
		assert.IsType(t, &repository.SQLiteSnapshotRepository{}, repo)

		slots, err := repo.ListSlots(ctx)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.AppConfig{SaveBackend: "floppy"}
		_, closeRepo, err := openRepository(ctx, cfg, logger.Discard())
		require.Error(t, err)
		assert.NotPanics(t, closeRepo)
	})
}

func TestNewPublisher(t *testing.T) {
	assert.NotNil(t, newPublisher(&config.AppConfig{}, logger.Discard()))
	assert.NotNil(t, newPublisher(&config.AppConfig{UnlockWebhookURL: "http://localhost:9/unlocks"}, logger.Discard()))
}
