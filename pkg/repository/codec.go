package repository

import (
	"encoding/json"
	"fmt"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/errors"
)

// EncodeSnapshot serializes a snapshot as a JSON document.
func EncodeSnapshot(snapshot *domain.Snapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, errors.ErrValidationFailed("snapshot", "is nil")
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot document.
//
// money, stats and upgrades are required: a missing, null or malformed value is
// a SAVE_CORRUPT error. Every other field falls back to its zero value when
// absent or malformed.
func DecodeSnapshot(data []byte) (*domain.Snapshot, error) {
	snapshot, _, err := decodeSnapshot(data)
	return snapshot, err
}

// decodeSnapshot also returns the optional fields that were malformed and
// replaced by defaults.
func decodeSnapshot(data []byte) (*domain.Snapshot, []string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, nil, errors.ErrSaveCorrupt("not a JSON object", err)
	}
	if fields == nil {
		return nil, nil, errors.ErrSaveCorrupt("document is null", nil)
	}

	var snapshot domain.Snapshot

	required := []struct {
		key    string
		target any
	}{
		{"money", &snapshot.Money},
		{"stats", &snapshot.Stats},
		{"upgrades", &snapshot.Upgrades},
	}
	for _, f := range required {
		raw, ok := fields[f.key]
		if !ok || string(raw) == "null" {
			return nil, nil, errors.ErrSaveCorrupt(fmt.Sprintf("missing required field %q", f.key), nil)
		}
		if err := json.Unmarshal(raw, f.target); err != nil {
			return nil, nil, errors.ErrSaveCorrupt(fmt.Sprintf("malformed field %q", f.key), err)
		}
	}

	optional := []struct {
		key    string
		target any
	}{
		{"clickValue", &snapshot.ClickValue},
		{"passiveIncome", &snapshot.PassiveIncome},
		{"currentPosition", &snapshot.CurrentPosition},
		{"triggeredEvents", &snapshot.TriggeredEvents},
		{"achievements", &snapshot.Achievements},
	}
	var degraded []string
	for _, f := range optional {
		raw, ok := fields[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, f.target); err != nil {
			degraded = append(degraded, f.key)
		}
	}

	// a failed decode may leave a partial value behind
	for _, key := range degraded {
		switch key {
		case "clickValue":
			snapshot.ClickValue = 0
		case "passiveIncome":
			snapshot.PassiveIncome = 0
		case "currentPosition":
			snapshot.CurrentPosition = ""
		case "triggeredEvents":
			snapshot.TriggeredEvents = nil
		case "achievements":
			snapshot.Achievements = nil
		}
	}

	return &snapshot, degraded, nil
}
