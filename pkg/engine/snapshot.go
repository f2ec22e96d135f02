package engine

import (
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
)

// Snapshot exports the persistable economic state.
func (e *Engine) Snapshot() domain.Snapshot {
	upgrades := make([]domain.UpgradeState, len(e.state.Upgrades))
	for i, u := range e.state.Upgrades {
		upgrades[i] = domain.UpgradeState{Name: u.Name, Count: u.Count, Cost: u.Cost}
	}

	return domain.Snapshot{
		Money:           e.state.Money,
		ClickValue:      e.state.ClickValue,
		PassiveIncome:   e.state.PassiveIncome,
		Stats:           e.state.Stats,
		Upgrades:        upgrades,
		CurrentPosition: e.evaluator.CurrentRank(),
		TriggeredEvents: e.evaluator.TriggeredEvents(),
		Achievements:    e.evaluator.AchievementStates(),
	}
}

// Restore overwrites the engine state from a snapshot.
//
// The state is first reset to the catalog defaults, then saved values are
// applied by catalog position and zipped to the shorter length, so entries the
// snapshot does not cover keep their fresh-start values. A saved cost below the
// catalog cost cannot come from play and is ignored. Passive income is
// recomputed from the restored counts rather than trusted. An unknown rank
// falls back to the lowest rank. The combo, the notification queue and pending
// unlocks are reset.
func (e *Engine) Restore(snap *domain.Snapshot) {
	if snap == nil {
		return
	}

	e.reset()

	s := e.state
	s.Money = max(snap.Money, 0)
	if snap.ClickValue > 0 {
		s.ClickValue = snap.ClickValue
	}
	s.Stats = snap.Stats

	for i := 0; i < min(len(snap.Upgrades), len(s.Upgrades)); i++ {
		saved := snap.Upgrades[i]
		u := &s.Upgrades[i]
		if saved.Name != u.Name {
			e.logger.Warn("Saved upgrade does not match catalog position",
				"index", i,
				"saved", saved.Name,
				"catalog", u.Name,
			)
		}
		u.Count = max(saved.Count, 0)
		if saved.Cost >= u.Cost {
			u.Cost = saved.Cost
		} else {
			e.logger.Warn("Saved upgrade cost below catalog cost, using catalog cost",
				"upgrade", u.Name,
				"saved", saved.Cost,
				"catalog", u.Cost,
			)
		}
	}
	s.RecomputePassiveIncome()

	if !e.evaluator.SetCurrentRank(snap.CurrentPosition) && snap.CurrentPosition != "" {
		e.logger.Warn("Saved rank not in ladder, using lowest rank", "rank", snap.CurrentPosition)
	}
	e.evaluator.RestoreLatches(snap.TriggeredEvents, snap.Achievements)

	e.queue.Clear()
	e.unlocks = nil

	e.logger.Debug("Engine restored",
		"money", s.Money,
		"passive_income", s.PassiveIncome,
		"rank", e.evaluator.CurrentRank(),
	)
}
