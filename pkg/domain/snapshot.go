package domain

import "time"

// Snapshot is the persisted economic state of one session.
// Lists are aligned to catalog order.
type Snapshot struct {
	Money           float64            `json:"money"`
	ClickValue      float64            `json:"clickValue"`
	PassiveIncome   float64            `json:"passiveIncome"`
	Stats           Stats              `json:"stats"`
	Upgrades        []UpgradeState     `json:"upgrades"`
	CurrentPosition string             `json:"currentPosition"`
	TriggeredEvents []bool             `json:"triggeredEvents"`
	Achievements    []AchievementState `json:"achievements"`
}

// UpgradeState is the mutable part of an upgrade.
type UpgradeState struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

// AchievementState is the persisted unlock flag of an achievement.
type AchievementState struct {
	Title    string `json:"title"`
	Unlocked bool   `json:"unlocked"`
}

// UnlockKind identifies which trigger family produced an Unlock.
type UnlockKind string

const (
	UnlockKindStoryEvent  UnlockKind = "story_event"
	UnlockKindAchievement UnlockKind = "achievement"
	UnlockKindPromotion   UnlockKind = "promotion"
)

// Unlock records a fired trigger for consumers outside the engine.
type Unlock struct {
	ID          string        `json:"id,omitempty"`
	Kind        UnlockKind    `json:"kind"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Reward      float64       `json:"reward,omitempty"`
	At          time.Duration `json:"at"`
}
