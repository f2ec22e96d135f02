package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-idle-progression/pkg/db"
	"github.com/AccelByte/extend-idle-progression/pkg/errors"
)

func setupSQLite(t *testing.T) (*SQLiteSnapshotRepository, *sql.DB) {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	repo, err := NewSQLiteSnapshotRepository(context.Background(), conn, nil)
	require.NoError(t, err)
	return repo, conn
}

func TestSQLiteSnapshotRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupSQLite(t)

	snap, err := repo.Load(ctx, "default")
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, repo.Save(ctx, "default", sampleSnapshot()))

	loaded, err := repo.Load(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), loaded)

	updated := sampleSnapshot()
	updated.CurrentPosition = "PDG"
	require.NoError(t, repo.Save(ctx, "default", updated))

	loaded, err = repo.Load(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "PDG", loaded.CurrentPosition)
}

func TestSQLiteSnapshotRepository_Corrupt(t *testing.T) {
	ctx := context.Background()
	repo, conn := setupSQLite(t)

	_, err := conn.ExecContext(ctx,
		`INSERT INTO progression_saves (slot, snapshot) VALUES (?, ?)`,
		"broken", `{"money": 1, "stats": {}}`,
	)
	require.NoError(t, err)

	_, err = repo.Load(ctx, "broken")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSaveCorrupt))
}

func TestSQLiteSnapshotRepository_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupSQLite(t)

	for _, slot := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, repo.Save(ctx, slot, sampleSnapshot()))
	}

	slots, err := repo.ListSlots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, slots)

	require.NoError(t, repo.Delete(ctx, "mid"))
	require.NoError(t, repo.Delete(ctx, "mid"))

	slots, err = repo.ListSlots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, slots)
}

func TestSQLiteSnapshotRepository_SchemaIsIdempotent(t *testing.T) {
	_, conn := setupSQLite(t)

	_, err := NewSQLiteSnapshotRepository(context.Background(), conn, nil)
	assert.NoError(t, err)
}
