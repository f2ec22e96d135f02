package engine

import (
	"time"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
)

// EconomyView is a read-only copy of the state a presentation layer draws.
type EconomyView struct {
	Money           float64
	ClickValue      float64
	PassiveIncome   float64
	ComboCounter    int
	ScoreMultiplier float64
	Stats           domain.Stats
	Upgrades        []UpgradeView
	CurrentRank     string
	Now             time.Duration
}

// UpgradeView is one row of the shop.
type UpgradeView struct {
	Name              string
	Description       string
	Cost              float64
	ProductivityBoost float64
	Count             int
	Affordable        bool
}

// View returns a copy of the current state for display.
func (e *Engine) View() EconomyView {
	s := e.state

	upgrades := make([]UpgradeView, len(s.Upgrades))
	for i, u := range s.Upgrades {
		upgrades[i] = UpgradeView{
			Name:              u.Name,
			Description:       u.Description,
			Cost:              u.Cost,
			ProductivityBoost: u.ProductivityBoost,
			Count:             u.Count,
			Affordable:        s.Money >= u.Cost,
		}
	}

	return EconomyView{
		Money:           s.Money,
		ClickValue:      s.ClickValue,
		PassiveIncome:   s.PassiveIncome,
		ComboCounter:    s.ComboCounter,
		ScoreMultiplier: s.ScoreMultiplier,
		Stats:           s.Stats,
		Upgrades:        upgrades,
		CurrentRank:     e.evaluator.CurrentRank(),
		Now:             e.now,
	}
}
