// Package engine composes the economy, trigger evaluator and notification queue
// into the progression engine driven by a presentation loop.
//
// An Engine is single-threaded: OnClick, OnTick and PurchaseUpgrade must not be
// called concurrently. Each session owns its own Engine.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/economy"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
	"github.com/AccelByte/extend-idle-progression/pkg/notification"
	"github.com/AccelByte/extend-idle-progression/pkg/trigger"
)

// PromotionTitle is the notification title used for rank changes.
const PromotionTitle = "Promotion !"

// Engine is the progression orchestrator.
type Engine struct {
	catalog   *config.Catalog
	state     *economy.State
	evaluator *trigger.Evaluator
	queue     *notification.Queue
	tuning    config.Tuning
	flavor    []string

	// now is the elapsed game time, advanced only by OnTick.
	now     time.Duration
	unlocks []domain.Unlock

	rng     *rand.Rand
	metrics Metrics
	logger  *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRand sets the random source used for flavor text and random durations.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithMetrics attaches a metrics hook.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// New creates an engine in its fresh-start state from a validated catalog.
func New(catalog *config.Catalog, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		tuning:  catalog.Tuning,
		flavor:  append([]string(nil), catalog.FlavorTexts...),
		metrics: NopMetrics{},
		logger:  logger.OrDiscard(log),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	e.reset()
	e.queue = notification.NewQueue(notification.OptionsFromTuning(catalog.Tuning), e.rng)

	return e
}

// reset puts the economy and every trigger latch back to the catalog's
// fresh-start values.
func (e *Engine) reset() {
	c := e.catalog
	e.state = economy.NewState(c.Upgrades, c.Tuning.ClickValue, economy.ComboFromTuning(c.Tuning))
	e.evaluator = trigger.NewEvaluator(c.StoryEvents, c.Achievements, c.Ranks, e.logger)
}

// OnClick resolves a click at the given time and returns the money gained.
// The timestamp only drives the combo window; notifications use the engine clock.
func (e *Engine) OnClick(at time.Duration) float64 {
	gain := e.state.Click(at)
	e.metrics.Click(gain, e.state.ScoreMultiplier)

	if len(e.flavor) > 0 && e.rng.Float64() < e.tuning.FlavorChance {
		line := e.flavor[e.rng.IntN(len(e.flavor))]
		e.notify("", line, domain.PriorityRandom)
	}

	return gain
}

// OnTick advances the engine clock by elapsed, accrues passive income, runs the
// trigger evaluator and expires notifications. Negative elapsed is ignored.
func (e *Engine) OnTick(elapsed time.Duration) {
	if elapsed < 0 {
		return
	}
	e.now += elapsed

	e.state.Accrue(elapsed)

	for _, u := range e.evaluator.Evaluate(e.state, e.now) {
		e.announce(u)
	}

	e.queue.Expire(e.now)
}

// PurchaseUpgrade buys one unit of the named upgrade. Insufficient funds and
// unknown names are declined and return false.
func (e *Engine) PurchaseUpgrade(name string) bool {
	u := e.state.Upgrade(name)
	var cost float64
	if u != nil {
		cost = u.Cost
	}

	ok, err := e.state.Purchase(name)
	if err != nil {
		e.logger.Debug("Purchase declined", "upgrade", name, "error", err)
		return false
	}
	if !ok {
		e.logger.Debug("Purchase declined", "upgrade", name, "cost", cost, "money", e.state.Money)
		return false
	}

	e.metrics.Purchase(name, cost)
	return true
}

// CanAfford reports whether the named upgrade can be bought now.
func (e *Engine) CanAfford(name string) bool {
	return e.state.CanAfford(name)
}

// PendingNotification returns the most recently inserted live notification.
func (e *Engine) PendingNotification() (*domain.Notification, bool) {
	return e.queue.Latest(e.now)
}

// Notifications returns every queued notification, oldest first.
func (e *Engine) Notifications() []domain.Notification {
	return e.queue.Items()
}

// DrainUnlocks returns and clears the unlocks fired since the last drain.
func (e *Engine) DrainUnlocks() []domain.Unlock {
	out := e.unlocks
	e.unlocks = nil
	return out
}

// Now returns the elapsed game time.
func (e *Engine) Now() time.Duration {
	return e.now
}

// CurrentRank returns the name of the current rank.
func (e *Engine) CurrentRank() string {
	return e.evaluator.CurrentRank()
}

func (e *Engine) announce(u domain.Unlock) {
	e.unlocks = append(e.unlocks, u)
	e.metrics.Unlock(u.Kind)

	e.logger.Info("Unlock fired",
		"kind", u.Kind,
		"title", u.Title,
		"reward", u.Reward,
		"money", e.state.Money,
	)

	switch u.Kind {
	case domain.UnlockKindStoryEvent:
		e.notify(u.Title, u.Description, domain.PriorityStory)
	case domain.UnlockKindAchievement:
		e.notify(u.Title, achievementText(u), domain.PriorityAchievement)
	case domain.UnlockKindPromotion:
		e.notify(PromotionTitle, fmt.Sprintf("Vous êtes maintenant %s", u.Title), domain.PriorityPromotion)
	}
}

func (e *Engine) notify(title, description string, priority domain.Priority) {
	_, ok := e.queue.Enqueue(title, description, priority, e.now)
	e.metrics.Notification(priority, ok)
}

func achievementText(u domain.Unlock) string {
	if u.Reward <= 0 {
		return u.Description
	}
	return fmt.Sprintf("%s (+%.0f€)", u.Description, u.Reward)
}
