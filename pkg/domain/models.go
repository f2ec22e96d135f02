package domain

import (
	"fmt"
	"math"
)

// CostGrowthFactor is applied to an upgrade's cost after every purchase.
const CostGrowthFactor = 1.15

// Upgrade is a repeatable purchase that raises passive income.
// Name is the catalog identity; Count and Cost are the mutable per-session state.
type Upgrade struct {
	Name              string  `json:"name" yaml:"name" validate:"required,max=100"`
	Description       string  `json:"description" yaml:"description"`
	Cost              float64 `json:"cost" yaml:"cost" validate:"gte=1"`
	ProductivityBoost float64 `json:"productivity_boost" yaml:"productivity_boost" validate:"gte=0"`
	Count             int     `json:"-" yaml:"-"`
}

// TotalBoost returns the income per second contributed by all owned units.
func (u *Upgrade) TotalBoost() float64 {
	return u.ProductivityBoost * float64(u.Count)
}

// NextCost returns the cost after one more purchase: floor(cost * 1.15).
func (u *Upgrade) NextCost() float64 {
	return math.Floor(u.Cost * CostGrowthFactor)
}

// Metric selects which cumulative quantity a trigger condition compares.
type Metric uint8

const (
	// MetricMoney compares the current balance.
	MetricMoney Metric = iota + 1
	// MetricClicks compares Stats.TotalClicks.
	MetricClicks
	// MetricUpgrades compares Stats.TotalUpgradesBought.
	MetricUpgrades
	// MetricMoneyEarned compares Stats.TotalMoneyEarned.
	MetricMoneyEarned
)

var metricNames = map[Metric]string{
	MetricMoney:       "money",
	MetricClicks:      "clicks",
	MetricUpgrades:    "upgrades",
	MetricMoneyEarned: "money_earned",
}

// IsValid returns true if the metric is a known kind.
func (m Metric) IsValid() bool {
	_, ok := metricNames[m]
	return ok
}

func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("metric(%d)", uint8(m))
}

// ParseMetric converts a catalog tag ("money", "clicks", ...) into a Metric.
func ParseMetric(s string) (Metric, error) {
	for m, name := range metricNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid metric %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Condition is a threshold over one metric. The comparison is inclusive (>=).
type Condition struct {
	Metric    Metric  `json:"metric" yaml:"metric" validate:"required"`
	Threshold float64 `json:"threshold" yaml:"threshold" validate:"gte=0"`
}

// Met reports whether the condition holds for the given stats and balance.
func (c Condition) Met(stats Stats, money float64) bool {
	return stats.Value(c.Metric, money) >= c.Threshold
}

// Stats are the cumulative counters. They never decrease and are never reset.
type Stats struct {
	TotalClicks         int64   `json:"totalClicks"`
	TotalMoneyEarned    float64 `json:"totalMoneyEarned"`
	TotalUpgradesBought int64   `json:"totalUpgradesBought"`
}

// Value returns the quantity selected by metric. MetricMoney reads the current
// balance, which is not part of Stats.
func (s Stats) Value(metric Metric, money float64) float64 {
	switch metric {
	case MetricMoney:
		return money
	case MetricClicks:
		return float64(s.TotalClicks)
	case MetricUpgrades:
		return float64(s.TotalUpgradesBought)
	case MetricMoneyEarned:
		return s.TotalMoneyEarned
	default:
		return 0
	}
}

// StoryEvent is a one-shot narrative unlock.
type StoryEvent struct {
	Title       string    `json:"title" yaml:"title" validate:"required"`
	Description string    `json:"description" yaml:"description"`
	Condition   Condition `json:"condition" yaml:"condition"`
	Triggered   bool      `json:"-" yaml:"-"`
}

// StoryMetrics lists the metrics a story event may be keyed on.
var StoryMetrics = []Metric{MetricMoney, MetricClicks, MetricUpgrades}

// Achievement is a one-shot unlock that grants a money reward.
type Achievement struct {
	Title       string    `json:"title" yaml:"title" validate:"required"`
	Description string    `json:"description" yaml:"description"`
	Condition   Condition `json:"condition" yaml:"condition"`
	Reward      float64   `json:"reward" yaml:"reward" validate:"gte=0"`
	Unlocked    bool      `json:"-" yaml:"-"`
}

// AchievementMetrics lists the metrics an achievement may be keyed on.
var AchievementMetrics = []Metric{MetricClicks, MetricUpgrades, MetricMoneyEarned}

// Rank is one rung of the promotion ladder.
type Rank struct {
	Name      string  `json:"name" yaml:"name" validate:"required"`
	Threshold float64 `json:"threshold" yaml:"threshold" validate:"gte=0"`
}

// HighestRankIndex returns the index of the highest rank whose threshold is
// <= money, or -1 when none qualifies. Ranks must be sorted by threshold.
func HighestRankIndex(ranks []Rank, money float64) int {
	best := -1
	for i, r := range ranks {
		if money >= r.Threshold {
			best = i
		}
	}
	return best
}

// RankIndex returns the position of the named rank, or -1.
func RankIndex(ranks []Rank, name string) int {
	for i, r := range ranks {
		if r.Name == name {
			return i
		}
	}
	return -1
}
