package session

import (
	"sync"
	"time"

	"github.com/AccelByte/extend-idle-progression/pkg/cache"
	"github.com/AccelByte/extend-idle-progression/pkg/common"
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/engine"
	"github.com/AccelByte/extend-idle-progression/pkg/errors"
)

// Session is one open save slot. All methods are safe for concurrent use; they
// serialize access to the session's engine.
type Session struct {
	ID   string
	Slot string

	mu       sync.Mutex
	engine   *engine.Engine
	catalog  cache.CatalogCache
	clock    common.Clock
	opened   time.Time
	lastTick time.Time

	// version counts mutations; saved is the version last persisted.
	version uint64
	saved   uint64
}

// Status is the display state of a session.
type Status struct {
	engine.EconomyView

	// NextRank is empty at the top of the ladder.
	NextRank          string
	NextRankThreshold float64
}

func newSession(id, slot string, e *engine.Engine, catalog cache.CatalogCache, clock common.Clock) *Session {
	now := clock.Now()
	return &Session{
		ID:       id,
		Slot:     slot,
		engine:   e,
		catalog:  catalog,
		clock:    clock,
		opened:   now,
		lastTick: now,
	}
}

// Click registers a click at the current wall time and returns the money gained.
func (s *Session) Click() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	return s.engine.OnClick(common.Elapsed(s.clock, s.opened))
}

// Tick advances the engine by the wall time elapsed since the previous tick.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	elapsed := now.Sub(s.lastTick)
	s.lastTick = now
	if elapsed <= 0 {
		return
	}

	s.engine.OnTick(elapsed)
	s.version++
}

// Purchase buys one unit of the named upgrade. It returns false with no error
// when the player cannot afford it, and UPGRADE_NOT_FOUND for an unknown name.
func (s *Session) Purchase(name string) (bool, error) {
	if s.catalog.GetUpgradeByName(name) == nil {
		return false, errors.ErrUpgradeNotFound(name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.engine.PurchaseUpgrade(name)
	if ok {
		s.version++
	}
	return ok, nil
}

// View returns a copy of the economy state.
func (s *Session) View() engine.EconomyView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.View()
}

// Status returns the economy state plus the next rank on the ladder.
func (s *Session) Status() Status {
	view := s.View()
	st := Status{EconomyView: view}
	if next := s.catalog.GetNextRank(view.CurrentRank); next != nil {
		st.NextRank = next.Name
		st.NextRankThreshold = next.Threshold
	}
	return st
}

// Pending returns the notification to display, if any.
func (s *Session) Pending() (*domain.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.PendingNotification()
}

// Notifications returns every queued notification, oldest first.
func (s *Session) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Notifications()
}

// Dirty reports whether the session changed since it was last saved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version != s.saved
}

func (s *Session) snapshot() (domain.Snapshot, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(), s.version
}

// markSaved records that version reached storage. Mutations made while the
// save was in flight keep the session dirty.
func (s *Session) markSaved(version uint64) {
	s.mu.Lock()
	if version > s.saved {
		s.saved = version
	}
	s.mu.Unlock()
}

func (s *Session) drainUnlocks() []domain.Unlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.DrainUnlocks()
}
