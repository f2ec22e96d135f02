// Package economy owns the money balance, click combo and upgrade purchases of
// a single session.
package economy

import (
	"math"
	"time"

	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	progerrors "github.com/AccelByte/extend-idle-progression/pkg/errors"
)

// Combo holds the click-combo balance constants.
type Combo struct {
	Timeout       time.Duration
	Step          float64
	MaxMultiplier float64
}

// ComboFromTuning extracts the combo constants from catalog tuning.
func ComboFromTuning(t config.Tuning) Combo {
	return Combo{
		Timeout:       t.ComboTimeout(),
		Step:          t.ComboStep,
		MaxMultiplier: t.ComboMaxMultiplier,
	}
}

// State is the economic state machine. Money never goes negative: the only
// debit is Purchase, which is gated on affordability.
type State struct {
	Money           float64
	ClickValue      float64
	PassiveIncome   float64
	ComboCounter    int
	ScoreMultiplier float64
	Stats           domain.Stats
	Upgrades        []domain.Upgrade

	combo      Combo
	lastClick  time.Duration
	hasClicked bool
}

// NewState creates a fresh state. The upgrade catalog is copied so that counts
// and costs can be mutated per session.
func NewState(upgrades []domain.Upgrade, clickValue float64, combo Combo) *State {
	owned := make([]domain.Upgrade, len(upgrades))
	copy(owned, upgrades)
	for i := range owned {
		owned[i].Count = 0
	}

	return &State{
		ClickValue:      clickValue,
		ScoreMultiplier: 1.0,
		Upgrades:        owned,
		combo:           combo,
	}
}

// Click resolves one click at time at and returns the money gained.
// A click within the combo window of the previous one grows the multiplier;
// a late click, or the first one, resets it. There is no decay timer.
func (s *State) Click(at time.Duration) float64 {
	if s.hasClicked && at-s.lastClick < s.combo.Timeout {
		s.ComboCounter++
		s.ScoreMultiplier = math.Min(s.combo.MaxMultiplier, 1+float64(s.ComboCounter)*s.combo.Step)
	} else {
		s.ComboCounter = 0
		s.ScoreMultiplier = 1.0
	}

	gain := s.ClickValue * s.ScoreMultiplier
	s.Money += gain
	s.Stats.TotalClicks++
	s.Stats.TotalMoneyEarned += gain

	s.lastClick = at
	s.hasClicked = true

	return gain
}

// Accrue credits passive income for elapsed time and returns the amount earned.
// Non-positive elapsed time is a no-op.
func (s *State) Accrue(elapsed time.Duration) float64 {
	if elapsed <= 0 || s.PassiveIncome == 0 {
		return 0
	}

	earned := s.PassiveIncome * elapsed.Seconds()
	s.Money += earned
	s.Stats.TotalMoneyEarned += earned
	return earned
}

// Credit adds a reward to the balance. Rewards are not counted as earned money.
func (s *State) Credit(amount float64) {
	if amount > 0 {
		s.Money += amount
	}
}

// Purchase buys one unit of the named upgrade.
// It returns false with a nil error when funds are insufficient, leaving the
// state untouched, and an UPGRADE_NOT_FOUND error for an unknown name.
func (s *State) Purchase(name string) (bool, error) {
	u := s.Upgrade(name)
	if u == nil {
		return false, progerrors.ErrUpgradeNotFound(name)
	}
	if s.Money < u.Cost {
		return false, nil
	}

	s.Money -= u.Cost
	u.Count++
	s.PassiveIncome += u.ProductivityBoost
	s.Stats.TotalUpgradesBought++
	u.Cost = u.NextCost()

	return true, nil
}

// CanAfford reports whether the named upgrade can be bought now.
func (s *State) CanAfford(name string) bool {
	u := s.Upgrade(name)
	return u != nil && s.Money >= u.Cost
}

// Affordable returns the names of every upgrade that can be bought now.
func (s *State) Affordable() []string {
	var names []string
	for _, u := range s.Upgrades {
		if s.Money >= u.Cost {
			names = append(names, u.Name)
		}
	}
	return names
}

// Upgrade returns a pointer to the owned upgrade with the given name, or nil.
func (s *State) Upgrade(name string) *domain.Upgrade {
	for i := range s.Upgrades {
		if s.Upgrades[i].Name == name {
			return &s.Upgrades[i]
		}
	}
	return nil
}

// RecomputePassiveIncome sets PassiveIncome to the sum of every upgrade's
// total boost.
func (s *State) RecomputePassiveIncome() float64 {
	total := 0.0
	for i := range s.Upgrades {
		total += s.Upgrades[i].TotalBoost()
	}
	s.PassiveIncome = total
	return total
}
