// Package session owns open save slots: it loads and saves engine snapshots,
// serializes access to each engine, and forwards fired unlocks to a publisher.
package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/AccelByte/extend-idle-progression/pkg/cache"
	"github.com/AccelByte/extend-idle-progression/pkg/client"
	"github.com/AccelByte/extend-idle-progression/pkg/common"
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/engine"
	"github.com/AccelByte/extend-idle-progression/pkg/errors"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
	"github.com/AccelByte/extend-idle-progression/pkg/repository"
)

const (
	DefaultMaxSessions = 64
	DefaultSessionTTL  = 30 * time.Minute

	// evictSaveTimeout bounds the save made when an idle session expires.
	evictSaveTimeout = 5 * time.Second
)

// Metrics extends the engine hook with session lifecycle events.
type Metrics interface {
	engine.Metrics
	SessionOpened()
	SessionClosed()
	Save(err error)
	Publish(kind domain.UnlockKind, err error)
}

// NopMetrics discards every event.
type NopMetrics struct {
	engine.NopMetrics
}

func (NopMetrics) SessionOpened()                   {}
func (NopMetrics) SessionClosed()                   {}
func (NopMetrics) Save(error)                       {}
func (NopMetrics) Publish(domain.UnlockKind, error) {}

// bulkDeleter is implemented by backends that remove several slots in one
// statement.
type bulkDeleter interface {
	DeleteSlots(ctx context.Context, slots []string) (int64, error)
}

var _ bulkDeleter = (*repository.PostgresSnapshotRepository)(nil)

// Manager holds open sessions in an expiring LRU.
type Manager struct {
	repo      repository.SnapshotRepository
	catalog   cache.CatalogCache
	publisher client.UnlockPublisher
	retry     client.RetryConfig
	metrics   Metrics
	clock     common.Clock
	seed      func() *rand.Rand
	logger    *slog.Logger

	maxSessions int
	ttl         time.Duration
	sessions    *expirable.LRU[string, *Session]

	// openMu keeps two Opens of one slot from loading it twice.
	openMu sync.Mutex
}

// Option customizes a Manager.
type Option func(*Manager)

// WithPublisher forwards unlocks drained by Flush to p.
func WithPublisher(p client.UnlockPublisher, retry client.RetryConfig) Option {
	return func(m *Manager) {
		m.publisher = p
		m.retry = retry
	}
}

// WithMetrics attaches metrics to the manager and every engine it creates.
func WithMetrics(metrics Metrics) Option {
	return func(m *Manager) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// WithClock replaces the wall clock used for ticks and click timestamps.
func WithClock(clock common.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithRandSource makes engine randomness reproducible. seed is called once per
// opened session.
func WithRandSource(seed func() *rand.Rand) Option {
	return func(m *Manager) { m.seed = seed }
}

// WithCapacity bounds the number of open sessions and how long an untouched
// session stays open. Expired sessions are saved before they are dropped.
func WithCapacity(maxSessions int, ttl time.Duration) Option {
	return func(m *Manager) {
		if maxSessions > 0 {
			m.maxSessions = maxSessions
		}
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// NewManager creates a session manager.
func NewManager(repo repository.SnapshotRepository, catalog cache.CatalogCache, log *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		repo:        repo,
		catalog:     catalog,
		retry:       client.DefaultRetryConfig(),
		metrics:     NopMetrics{},
		clock:       common.RealClock{},
		logger:      logger.OrDiscard(log),
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.sessions = expirable.NewLRU[string, *Session](m.maxSessions, m.onEvict, m.ttl)
	return m
}

// Open returns the session for slot, loading its save or starting fresh.
// An already open slot returns the existing session. A corrupt save is
// returned as a SAVE_CORRUPT error and no session is opened.
func (m *Manager) Open(ctx context.Context, slot string) (*Session, error) {
	if err := repository.ValidateSlot(slot); err != nil {
		return nil, err
	}

	m.openMu.Lock()
	defer m.openMu.Unlock()

	for _, s := range m.sessions.Values() {
		if s.Slot == slot {
			return m.touch(s), nil
		}
	}

	snap, err := m.repo.Load(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %s: %w", slot, err)
	}

	id := uuid.NewString()
	log := m.logger.With("session_id", id, "slot", slot)

	opts := []engine.Option{engine.WithMetrics(m.metrics)}
	if m.seed != nil {
		opts = append(opts, engine.WithRand(m.seed()))
	}
	e := engine.New(m.catalog.GetCatalog(), log, opts...)

	if snap != nil {
		if snap.CurrentPosition != "" && m.catalog.GetRankByName(snap.CurrentPosition) == nil {
			log.Warn("Saved rank missing from catalog", "rank", snap.CurrentPosition)
		}
		e.Restore(snap)
		log.Info("Session restored", "money", snap.Money, "rank", e.CurrentRank())
	} else {
		log.Info("Session started fresh")
	}

	s := newSession(id, slot, e, m.catalog, m.clock)
	m.sessions.Add(id, s)
	m.metrics.SessionOpened()
	return s, nil
}

// Get returns an open session and extends its lifetime.
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, errors.ErrSessionNotFound(id)
	}
	return m.touch(s), nil
}

// touch re-adds s so its expiry restarts. Get alone does not extend it.
func (m *Manager) touch(s *Session) *Session {
	m.sessions.Add(s.ID, s)
	return s
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Save persists the session's current snapshot.
func (m *Manager) Save(ctx context.Context, id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return m.save(ctx, s)
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	snap, version := s.snapshot()

	err := m.repo.Save(ctx, s.Slot, &snap)
	m.metrics.Save(err)
	if err != nil {
		m.logger.Error("Failed to save session",
			"session_id", s.ID,
			"slot", s.Slot,
			"error", err,
		)
		return fmt.Errorf("failed to save slot %s: %w", s.Slot, err)
	}

	s.markSaved(version)
	m.logger.Debug("Session saved", "session_id", s.ID, "slot", s.Slot, "money", snap.Money)
	return nil
}

// SaveAll saves every dirty session. Failures are joined.
func (m *Manager) SaveAll(ctx context.Context) error {
	var errs []error
	for _, s := range m.sessions.Values() {
		if !s.Dirty() {
			continue
		}
		if err := m.save(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Flush drains the session's fired unlocks and publishes them. Publish
// failures are logged and dropped; they never change game state. It returns
// the number of unlocks delivered.
func (m *Manager) Flush(ctx context.Context, id string) (int, error) {
	s, err := m.Get(id)
	if err != nil {
		return 0, err
	}

	unlocks := s.drainUnlocks()
	if m.publisher == nil || len(unlocks) == 0 {
		return 0, nil
	}

	delivered := 0
	for _, u := range unlocks {
		err := client.PublishWithRetry(ctx, m.publisher, s.ID, u, m.retry, m.logger)
		m.metrics.Publish(u.Kind, err)
		if err != nil {
			m.logger.Error("Dropping unlock after failed publish",
				"session_id", s.ID,
				"kind", u.Kind,
				"title", u.Title,
				"error", err,
			)
			continue
		}
		delivered++
	}
	return delivered, nil
}

// Close flushes and saves the session, then drops it.
func (m *Manager) Close(ctx context.Context, id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}

	if _, err := m.Flush(ctx, id); err != nil {
		return err
	}
	if err := m.save(ctx, s); err != nil {
		return err
	}

	m.sessions.Remove(id)
	m.logger.Info("Session closed", "session_id", id, "slot", s.Slot)
	return nil
}

// CloseAll closes every open session.
func (m *Manager) CloseAll(ctx context.Context) error {
	var errs []error
	for _, id := range m.sessions.Keys() {
		if err := m.Close(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// ReloadCatalog re-reads the catalog. Open sessions keep the catalog their
// engine was built from; sessions opened afterwards use the reloaded one.
func (m *Manager) ReloadCatalog() error {
	if err := m.catalog.Reload(); err != nil {
		m.logger.Error("Catalog reload failed, keeping current catalog", "error", err)
		return err
	}
	return nil
}

// DeleteSlots removes the saves of the given slots. Every slot is validated
// first, and a slot held by an open session is refused with SLOT_IN_USE since
// its next save would bring it back. Backends with a bulk delete remove all
// slots in one statement.
func (m *Manager) DeleteSlots(ctx context.Context, slots ...string) error {
	for _, slot := range slots {
		if err := repository.ValidateSlot(slot); err != nil {
			return err
		}
	}

	m.openMu.Lock()
	defer m.openMu.Unlock()

	for _, s := range m.sessions.Values() {
		for _, slot := range slots {
			if s.Slot == slot {
				return errors.ErrSlotInUse(slot)
			}
		}
	}

	if bulk, ok := m.repo.(bulkDeleter); ok {
		deleted, err := bulk.DeleteSlots(ctx, slots)
		if err != nil {
			return err
		}
		m.logger.Info("Slots deleted", "slots", slots, "deleted", deleted)
		return nil
	}

	for _, slot := range slots {
		if err := m.repo.Delete(ctx, slot); err != nil {
			return fmt.Errorf("failed to delete slot %s: %w", slot, err)
		}
	}
	m.logger.Info("Slots deleted", "slots", slots)
	return nil
}

// onEvict runs under the LRU lock and must not touch m.sessions.
func (m *Manager) onEvict(id string, s *Session) {
	m.metrics.SessionClosed()
	if !s.Dirty() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), evictSaveTimeout)
	defer cancel()
	if err := m.save(ctx, s); err != nil {
		m.logger.Warn("Evicted session lost unsaved progress", "session_id", id, "slot", s.Slot)
	}
}
