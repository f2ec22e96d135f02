package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/errors"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"

	"github.com/lib/pq" // PostgreSQL driver and error codes
)

// pqUndefinedTable is the SQLSTATE returned before the schema exists.
const pqUndefinedTable = "42P01"

// PostgresSchema creates the save table. Snapshots are stored as JSONB.
const PostgresSchema = `
	CREATE TABLE IF NOT EXISTS progression_saves (
		slot VARCHAR(64) PRIMARY KEY,
		snapshot JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)
`

// PostgresSnapshotRepository implements SnapshotRepository using PostgreSQL.
type PostgresSnapshotRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresSnapshotRepository creates a new PostgreSQL-backed snapshot repository.
func NewPostgresSnapshotRepository(db *sql.DB, log *slog.Logger) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{
		db:     db,
		logger: logger.OrDiscard(log),
	}
}

// EnsureSchema creates the save table if it does not exist.
func (r *PostgresSnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, PostgresSchema); err != nil {
		return errors.ErrDatabaseError("ensure schema", err)
	}
	return nil
}

// Load retrieves the snapshot for a slot.
func (r *PostgresSnapshotRepository) Load(ctx context.Context, slot string) (*domain.Snapshot, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	query := `
		SELECT snapshot
		FROM progression_saves
		WHERE slot = $1
	`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, slot).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, nil // Never saved (fresh start)
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable {
		r.logger.Debug("Save table missing, treating as fresh start", "slot", slot)
		return nil, nil
	}

	if err != nil {
		return nil, errors.ErrDatabaseError("load snapshot", err)
	}

	snapshot, degraded, err := decodeSnapshot(data)
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

// Save creates or replaces the snapshot for a slot.
// Uses INSERT ... ON CONFLICT (slot) DO UPDATE.
func (r *PostgresSnapshotRepository) Save(ctx context.Context, slot string, snapshot *domain.Snapshot) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}

	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO progression_saves (slot, snapshot, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
		ON CONFLICT (slot) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, slot, string(data)); err != nil {
		return errors.ErrDatabaseError("save snapshot", err)
	}

	return nil
}

// Delete removes a slot.
func (r *PostgresSnapshotRepository) Delete(ctx context.Context, slot string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM progression_saves WHERE slot = $1`, slot); err != nil {
		return errors.ErrDatabaseError("delete snapshot", err)
	}
	return nil
}

// DeleteSlots removes several slots in one statement.
func (r *PostgresSnapshotRepository) DeleteSlots(ctx context.Context, slots []string) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	for _, slot := range slots {
		if err := ValidateSlot(slot); err != nil {
			return 0, err
		}
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM progression_saves WHERE slot = ANY($1)`,
		pq.Array(slots),
	)
	if err != nil {
		return 0, errors.ErrDatabaseError("delete snapshots", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.ErrDatabaseError("delete snapshots", err)
	}
	return affected, nil
}

// ListSlots returns every saved slot.
func (r *PostgresSnapshotRepository) ListSlots(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slot FROM progression_saves ORDER BY slot ASC`)
	if err != nil {
		return nil, errors.ErrDatabaseError("list slots", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSlots(rows)
}

func scanSlots(rows *sql.Rows) ([]string, error) {
	slots := []string{}
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, errors.ErrDatabaseError("scan slot", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate slots", err)
	}
	return slots, nil
}

var _ SnapshotRepository = (*PostgresSnapshotRepository)(nil)
