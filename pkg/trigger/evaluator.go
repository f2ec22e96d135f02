// Package trigger evaluates story events, achievements and rank promotions
// against the economic state.
package trigger

import (
	"log/slog"
	"time"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/economy"
)

// Evaluator owns the per-session latches of every trigger family.
type Evaluator struct {
	events       []domain.StoryEvent
	achievements []domain.Achievement
	ranks        []domain.Rank
	current      int
	logger       *slog.Logger
}

// NewEvaluator copies the catalog definitions and starts at the lowest rank.
// ranks must be non-empty and sorted by threshold.
func NewEvaluator(events []domain.StoryEvent, achievements []domain.Achievement, ranks []domain.Rank, logger *slog.Logger) *Evaluator {
	e := &Evaluator{
		events:       make([]domain.StoryEvent, len(events)),
		achievements: make([]domain.Achievement, len(achievements)),
		ranks:        append([]domain.Rank(nil), ranks...),
		logger:       logger,
	}
	copy(e.events, events)
	copy(e.achievements, achievements)
	for i := range e.events {
		e.events[i].Triggered = false
	}
	for i := range e.achievements {
		e.achievements[i].Unlocked = false
	}
	return e
}

// Evaluate runs story events, then achievements, then promotions, and returns
// what fired in that order. Achievement rewards are credited to state before
// promotions are checked so promotions observe the post-reward balance.
func (e *Evaluator) Evaluate(state *economy.State, at time.Duration) []domain.Unlock {
	var fired []domain.Unlock

	for i := range e.events {
		ev := &e.events[i]
		if ev.Triggered || !ev.Condition.Met(state.Stats, state.Money) {
			continue
		}
		ev.Triggered = true
		fired = append(fired, domain.Unlock{
			Kind:        domain.UnlockKindStoryEvent,
			Title:       ev.Title,
			Description: ev.Description,
			At:          at,
		})
	}

	for i := range e.achievements {
		a := &e.achievements[i]
		if a.Unlocked || !a.Condition.Met(state.Stats, state.Money) {
			continue
		}
		a.Unlocked = true
		state.Credit(a.Reward)
		fired = append(fired, domain.Unlock{
			Kind:        domain.UnlockKindAchievement,
			Title:       a.Title,
			Description: a.Description,
			Reward:      a.Reward,
			At:          at,
		})
	}

	if idx := domain.HighestRankIndex(e.ranks, state.Money); idx > e.current {
		e.logger.Debug("Rank advanced",
			"from", e.ranks[e.current].Name,
			"to", e.ranks[idx].Name,
			"money", state.Money,
		)
		e.current = idx
		fired = append(fired, domain.Unlock{
			Kind:  domain.UnlockKindPromotion,
			Title: e.ranks[idx].Name,
			At:    at,
		})
	}

	return fired
}

// CurrentRank returns the name of the current rank.
func (e *Evaluator) CurrentRank() string {
	if len(e.ranks) == 0 {
		return ""
	}
	return e.ranks[e.current].Name
}

// SetCurrentRank restores the rank by name. An unknown name falls back to the
// lowest rank and returns false.
func (e *Evaluator) SetCurrentRank(name string) bool {
	idx := domain.RankIndex(e.ranks, name)
	if idx < 0 {
		e.current = 0
		return false
	}
	e.current = idx
	return true
}

// TriggeredEvents returns the story latches aligned to catalog order.
func (e *Evaluator) TriggeredEvents() []bool {
	out := make([]bool, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Triggered
	}
	return out
}

// AchievementStates returns the achievement latches aligned to catalog order.
func (e *Evaluator) AchievementStates() []domain.AchievementState {
	out := make([]domain.AchievementState, len(e.achievements))
	for i, a := range e.achievements {
		out[i] = domain.AchievementState{Title: a.Title, Unlocked: a.Unlocked}
	}
	return out
}

// RestoreLatches applies saved latches by position. Lists of different length
// are zipped to the shorter one; entries past it keep their current value.
func (e *Evaluator) RestoreLatches(triggered []bool, achievements []domain.AchievementState) {
	for i := 0; i < min(len(triggered), len(e.events)); i++ {
		e.events[i].Triggered = triggered[i]
	}
	for i := 0; i < min(len(achievements), len(e.achievements)); i++ {
		e.achievements[i].Unlocked = achievements[i].Unlocked
	}
}

// StoryEvents returns a copy of the story events with their latches.
func (e *Evaluator) StoryEvents() []domain.StoryEvent {
	return append([]domain.StoryEvent(nil), e.events...)
}

// Achievements returns a copy of the achievements with their latches.
func (e *Evaluator) Achievements() []domain.Achievement {
	return append([]domain.Achievement(nil), e.achievements...)
}
