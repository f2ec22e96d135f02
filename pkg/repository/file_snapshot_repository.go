package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
)

const saveFileExt = ".json"

// FileSnapshotRepository stores each slot as a JSON file in a directory.
type FileSnapshotRepository struct {
	dir    string
	logger *slog.Logger
}

// NewFileSnapshotRepository creates a file-backed repository rooted at dir.
// The directory is created on first save.
func NewFileSnapshotRepository(dir string, log *slog.Logger) *FileSnapshotRepository {
	return &FileSnapshotRepository{
		dir:    dir,
		logger: logger.OrDiscard(log),
	}
}

func (r *FileSnapshotRepository) path(slot string) string {
	return filepath.Join(r.dir, slot+saveFileExt)
}

// Load reads and decodes the slot file.
func (r *FileSnapshotRepository) Load(ctx context.Context, slot string) (*domain.Snapshot, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path(slot))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save file: %w", err)
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

// Save writes the slot through a temporary file and renames it into place so a
// crash never leaves a half-written save.
func (r *FileSnapshotRepository) Save(ctx context.Context, slot string, snapshot *domain.Snapshot) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, slot+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp save file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close save file: %w", err)
	}
	if err := os.Rename(tmpName, r.path(slot)); err != nil {
		return fmt.Errorf("failed to replace save file: %w", err)
	}

	r.logger.Debug("Save written", "slot", slot, "bytes", len(data))
	return nil
}

// Delete removes the slot file.
func (r *FileSnapshotRepository) Delete(ctx context.Context, slot string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(r.path(slot))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

// ListSlots returns the slots that have a save file.
func (r *FileSnapshotRepository) ListSlots(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list save directory: %w", err)
	}

	slots := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, saveFileExt) {
			continue
		}
		slot := strings.TrimSuffix(name, saveFileExt)
		if ValidateSlot(slot) == nil {
			slots = append(slots, slot)
		}
	}
	sort.Strings(slots)
	return slots, nil
}

var _ SnapshotRepository = (*FileSnapshotRepository)(nil)
