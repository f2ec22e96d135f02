package repository

import (
	"context"
	"regexp"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/errors"
)

// SnapshotRepository persists one engine snapshot per save slot.
// This interface abstracts storage so the session layer can run on files,
// SQLite or PostgreSQL.
type SnapshotRepository interface {
	// Load retrieves the snapshot stored in slot.
	// Returns nil, nil if the slot has never been saved (fresh start).
	// Returns a SAVE_CORRUPT error if a required field is missing or malformed.
	Load(ctx context.Context, slot string) (*domain.Snapshot, error)

	// Save creates or replaces the snapshot stored in slot.
	Save(ctx context.Context, slot string, snapshot *domain.Snapshot) error

	// Delete removes a slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, slot string) error

	// ListSlots returns every saved slot name in ascending order.
	ListSlots(ctx context.Context) ([]string, error)
}

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateSlot rejects slot names that are empty, too long, or could escape a
// save directory.
func ValidateSlot(slot string) error {
	if !slotPattern.MatchString(slot) {
		return errors.ErrValidationFailed("slot", "must be 1-64 letters, digits, '-' or '_'")
	}
	return nil
}
