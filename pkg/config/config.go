package config

import (
	"time"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
)

// Catalog is the static game content loaded from catalog.json / catalog.yaml.
// Order matters: saves align upgrades, story events and achievements by index.
type Catalog struct {
	Upgrades     []domain.Upgrade     `json:"upgrades" yaml:"upgrades" validate:"required,min=1,dive"`
	StoryEvents  []domain.StoryEvent  `json:"story_events" yaml:"story_events" validate:"dive"`
	Achievements []domain.Achievement `json:"achievements" yaml:"achievements" validate:"dive"`
	Ranks        []domain.Rank        `json:"ranks" yaml:"ranks" validate:"required,min=1,dive"`
	FlavorTexts  []string             `json:"flavor_texts" yaml:"flavor_texts" validate:"dive,required"`
	Tuning       Tuning               `json:"tuning" yaml:"tuning"`
}

// RandomPolicy decides what happens when a random notification is requested
// while another one is still live.
type RandomPolicy string

const (
	// RandomPolicySuppress drops the new notification.
	RandomPolicySuppress RandomPolicy = "suppress"
	// RandomPolicyReplace removes the live one and inserts the new one.
	RandomPolicyReplace RandomPolicy = "replace"
)

// Tuning holds the balance constants of the engine. Zero values are replaced by
// DefaultTuning() values when a catalog is loaded.
type Tuning struct {
	ClickValue         float64 `json:"click_value" yaml:"click_value" validate:"gt=0"`
	ComboTimeoutMs     int64   `json:"combo_timeout_ms" yaml:"combo_timeout_ms" validate:"gt=0"`
	ComboStep          float64 `json:"combo_step" yaml:"combo_step" validate:"gte=0"`
	ComboMaxMultiplier float64 `json:"combo_max_multiplier" yaml:"combo_max_multiplier" validate:"gte=1"`

	QueueCapacity         int          `json:"queue_capacity" yaml:"queue_capacity" validate:"gte=1"`
	NormalDurationMs      int64        `json:"normal_duration_ms" yaml:"normal_duration_ms" validate:"gt=0"`
	PromotionDurationMs   int64        `json:"promotion_duration_ms" yaml:"promotion_duration_ms" validate:"gt=0"`
	StoryDurationMs       int64        `json:"story_duration_ms" yaml:"story_duration_ms" validate:"gt=0"`
	AchievementDurationMs int64        `json:"achievement_duration_ms" yaml:"achievement_duration_ms" validate:"gt=0"`
	RandomMinDurationMs   int64        `json:"random_min_duration_ms" yaml:"random_min_duration_ms" validate:"gt=0"`
	RandomMaxDurationMs   int64        `json:"random_max_duration_ms" yaml:"random_max_duration_ms" validate:"gtefield=RandomMinDurationMs"`
	RandomPolicy          RandomPolicy `json:"random_policy" yaml:"random_policy" validate:"oneof=suppress replace"`

	// FlavorChance is the probability that a click enqueues flavor text.
	FlavorChance float64 `json:"flavor_chance" yaml:"flavor_chance" validate:"gte=0,lte=1"`
}

// DefaultTuning returns the reference balance.
func DefaultTuning() Tuning {
	return Tuning{
		ClickValue:            1,
		ComboTimeoutMs:        1000,
		ComboStep:             0.1,
		ComboMaxMultiplier:    2.0,
		QueueCapacity:         5,
		NormalDurationMs:      5000,
		PromotionDurationMs:   5000,
		StoryDurationMs:       10000,
		AchievementDurationMs: 10000,
		RandomMinDurationMs:   2000,
		RandomMaxDurationMs:   3000,
		RandomPolicy:          RandomPolicySuppress,
		FlavorChance:          0.05,
	}
}

// ComboTimeout returns the combo window as a duration.
func (t Tuning) ComboTimeout() time.Duration {
	return time.Duration(t.ComboTimeoutMs) * time.Millisecond
}

// withDefaults fills zero fields from DefaultTuning. ComboStep and FlavorChance
// keep an explicit zero unless the whole block is empty.
func (t Tuning) withDefaults() Tuning {
	if t == (Tuning{}) {
		return DefaultTuning()
	}

	d := DefaultTuning()
	if t.ClickValue == 0 {
		t.ClickValue = d.ClickValue
	}
	if t.ComboTimeoutMs == 0 {
		t.ComboTimeoutMs = d.ComboTimeoutMs
	}
	if t.ComboMaxMultiplier == 0 {
		t.ComboMaxMultiplier = d.ComboMaxMultiplier
	}
	if t.QueueCapacity == 0 {
		t.QueueCapacity = d.QueueCapacity
	}
	if t.NormalDurationMs == 0 {
		t.NormalDurationMs = d.NormalDurationMs
	}
	if t.PromotionDurationMs == 0 {
		t.PromotionDurationMs = d.PromotionDurationMs
	}
	if t.StoryDurationMs == 0 {
		t.StoryDurationMs = d.StoryDurationMs
	}
	if t.AchievementDurationMs == 0 {
		t.AchievementDurationMs = d.AchievementDurationMs
	}
	if t.RandomMinDurationMs == 0 {
		t.RandomMinDurationMs = d.RandomMinDurationMs
	}
	if t.RandomMaxDurationMs == 0 {
		t.RandomMaxDurationMs = d.RandomMaxDurationMs
	}
	if t.RandomPolicy == "" {
		t.RandomPolicy = d.RandomPolicy
	}
	return t
}
