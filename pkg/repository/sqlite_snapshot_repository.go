package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/errors"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
)

// SQLiteSchema creates the save table for the embedded backend.
const SQLiteSchema = `
	CREATE TABLE IF NOT EXISTS progression_saves (
		slot TEXT PRIMARY KEY,
		snapshot TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

// SQLiteSnapshotRepository implements SnapshotRepository on a single-file
// SQLite database opened with db.OpenSQLite.
type SQLiteSnapshotRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteSnapshotRepository creates the repository and its table.
func NewSQLiteSnapshotRepository(ctx context.Context, db *sql.DB, log *slog.Logger) (*SQLiteSnapshotRepository, error) {
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		return nil, errors.ErrDatabaseError("ensure schema", err)
	}
	return &SQLiteSnapshotRepository{
		db:     db,
		logger: logger.OrDiscard(log),
	}, nil
}

func (r *SQLiteSnapshotRepository) Load(ctx context.Context, slot string) (*domain.Snapshot, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	var data string
	err := r.db.QueryRowContext(ctx, `SELECT snapshot FROM progression_saves WHERE slot = ?`, slot).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("load snapshot", err)
	}

	snapshot, degraded, err := decodeSnapshot([]byte(data))
	if err != nil {
		return nil, err
	}
	if len(degraded) > 0 {
		r.logger.Warn("Save has malformed optional fields, using defaults",
			"slot", slot,
			"fields", degraded,
		)
	}
	return snapshot, nil
}

func (r *SQLiteSnapshotRepository) Save(ctx context.Context, slot string, snapshot *domain.Snapshot) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}

	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO progression_saves (slot, snapshot)
		VALUES (?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			snapshot = excluded.snapshot,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.ExecContext(ctx, query, slot, string(data)); err != nil {
		return errors.ErrDatabaseError("save snapshot", err)
	}
	return nil
}

func (r *SQLiteSnapshotRepository) Delete(ctx context.Context, slot string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM progression_saves WHERE slot = ?`, slot); err != nil {
		return errors.ErrDatabaseError("delete snapshot", err)
	}
	return nil
}

func (r *SQLiteSnapshotRepository) ListSlots(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slot FROM progression_saves ORDER BY slot ASC`)
	if err != nil {
		return nil, errors.ErrDatabaseError("list slots", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSlots(rows)
}

var _ SnapshotRepository = (*SQLiteSnapshotRepository)(nil)
