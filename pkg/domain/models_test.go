package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetric_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		metric Metric
		want   bool
	}{
		{name: "money is valid", metric: MetricMoney, want: true},
		{name: "clicks is valid", metric: MetricClicks, want: true},
		{name: "upgrades is valid", metric: MetricUpgrades, want: true},
		{name: "money_earned is valid", metric: MetricMoneyEarned, want: true},
		{name: "zero value", metric: Metric(0), want: false},
		{name: "out of range", metric: Metric(42), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.metric.IsValid(); got != tt.want {
				t.Errorf("Metric.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetric_TextRoundTrip(t *testing.T) {
	var cond Condition
	err := json.Unmarshal([]byte(`{"metric":"money_earned","threshold":1000000}`), &cond)
	require.NoError(t, err)
	assert.Equal(t, MetricMoneyEarned, cond.Metric)
	assert.Equal(t, 1000000.0, cond.Threshold)

	out, err := json.Marshal(cond)
	require.NoError(t, err)
	assert.JSONEq(t, `{"metric":"money_earned","threshold":1000000}`, string(out))
}

func TestMetric_UnmarshalUnknown(t *testing.T) {
	var cond Condition
	err := json.Unmarshal([]byte(`{"metric":"karma","threshold":1}`), &cond)
	assert.Error(t, err)
}

func TestStats_Value(t *testing.T) {
	stats := Stats{TotalClicks: 12, TotalMoneyEarned: 345.5, TotalUpgradesBought: 3}

	assert.Equal(t, 99.0, stats.Value(MetricMoney, 99))
	assert.Equal(t, 12.0, stats.Value(MetricClicks, 99))
	assert.Equal(t, 3.0, stats.Value(MetricUpgrades, 99))
	assert.Equal(t, 345.5, stats.Value(MetricMoneyEarned, 99))
	assert.Equal(t, 0.0, stats.Value(Metric(0), 99))
}

func TestCondition_Met(t *testing.T) {
	cond := Condition{Metric: MetricMoney, Threshold: 10}

	assert.False(t, cond.Met(Stats{}, 9.99))
	assert.True(t, cond.Met(Stats{}, 10), "threshold is inclusive")
	assert.True(t, cond.Met(Stats{}, 11))
}

func TestUpgrade_NextCost(t *testing.T) {
	tests := []struct {
		cost float64
		want float64
	}{
		{cost: 10, want: 11},
		{cost: 15, want: 17},
		{cost: 100, want: 114},
		{cost: 1, want: 1},
	}

	for _, tt := range tests {
		u := &Upgrade{Cost: tt.cost}
		assert.Equal(t, tt.want, u.NextCost(), "cost %v", tt.cost)
	}
}

func TestUpgrade_TotalBoost(t *testing.T) {
	u := &Upgrade{ProductivityBoost: 0.5, Count: 4}
	assert.Equal(t, 2.0, u.TotalBoost())
}

func TestHighestRankIndex(t *testing.T) {
	ladder := []Rank{
		{Name: "Stagiaire", Threshold: 0},
		{Name: "Assistant", Threshold: 100},
		{Name: "PDG", Threshold: 50000},
	}

	assert.Equal(t, 0, HighestRankIndex(ladder, 0))
	assert.Equal(t, 1, HighestRankIndex(ladder, 100))
	assert.Equal(t, 1, HighestRankIndex(ladder, 150))
	assert.Equal(t, 2, HighestRankIndex(ladder, 60000))
	assert.Equal(t, -1, HighestRankIndex(ladder[1:], 50))
}

func TestRankIndex(t *testing.T) {
	ladder := []Rank{{Name: "Stagiaire"}, {Name: "Assistant", Threshold: 100}}

	assert.Equal(t, 1, RankIndex(ladder, "Assistant"))
	assert.Equal(t, -1, RankIndex(ladder, "Directeur"))
}

func TestPriority_IsValid(t *testing.T) {
	for _, p := range []Priority{PriorityNormal, PriorityRandom, PriorityStory, PriorityAchievement, PriorityPromotion} {
		assert.True(t, p.IsValid(), "priority %s", p)
	}
	assert.False(t, Priority("urgent").IsValid())
	assert.False(t, Priority("").IsValid())
}

func TestNotification_Expiry(t *testing.T) {
	n := &Notification{CreatedAt: time.Second, Duration: 5 * time.Second}

	assert.False(t, n.IsExpired(5*time.Second))
	assert.True(t, n.IsExpired(6*time.Second), "age == duration is expired")
	assert.Equal(t, 4*time.Second, n.Age(5*time.Second))
}

func TestNotification_Opacity(t *testing.T) {
	n := &Notification{CreatedAt: 0, Duration: 10 * time.Second}

	assert.InDelta(t, 1.0, n.Opacity(0), 1e-9)
	assert.InDelta(t, 0.75, n.Opacity(2500*time.Millisecond), 1e-9)
	assert.InDelta(t, 0.0, n.Opacity(12*time.Second), 1e-9)

	zero := &Notification{}
	assert.Equal(t, 0.0, zero.Opacity(time.Second))
}
