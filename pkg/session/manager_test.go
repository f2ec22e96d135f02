package session

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-idle-progression/pkg/cache"
	"github.com/AccelByte/extend-idle-progression/pkg/client"
	"github.com/AccelByte/extend-idle-progression/pkg/common"
	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/errors"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
	"github.com/AccelByte/extend-idle-progression/pkg/repository"
)

func testCatalog() *config.Catalog {
	tuning := config.DefaultTuning()
	tuning.FlavorChance = 0

	return &config.Catalog{
		Upgrades: []domain.Upgrade{
			{Name: "Agrafeuse Turbo", Cost: 15, ProductivityBoost: 0.1},
			{Name: "Stagiaire", Cost: 100, ProductivityBoost: 1},
		},
		StoryEvents: []domain.StoryEvent{
			{Title: "Premier Café", Description: "La pause de 10h", Condition: domain.Condition{Metric: domain.MetricMoney, Threshold: 10}},
		},
		Ranks: []domain.Rank{
			{Name: "Stagiaire", Threshold: 0},
			{Name: "Assistant", Threshold: 100},
			{Name: "PDG", Threshold: 50000},
		},
		Tuning: tuning,
	}
}

var testStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type countingMetrics struct {
	NopMetrics

	mu        sync.Mutex
	opened    int
	closed    int
	saves     int
	failures  int
	published int
}

func (c *countingMetrics) SessionOpened() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened++
}

func (c *countingMetrics) SessionClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
}

func (c *countingMetrics) Save(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failures++
		return
	}
	c.saves++
}

func (c *countingMetrics) Publish(_ domain.UnlockKind, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.published++
	}
}

func newTestManager(t *testing.T, repo repository.SnapshotRepository, opts ...Option) (*Manager, *common.FakeClock) {
	t.Helper()

	clock := common.NewFakeClock(testStart)
	catalogCache := cache.NewInMemoryCatalogCache(testCatalog(), "", logger.Discard())
	opts = append([]Option{
		WithClock(clock),
		WithRandSource(func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }),
	}, opts...)

	return NewManager(repo, catalogCache, logger.Discard(), opts...), clock
}

// clickN clicks n times, two seconds apart so no combo builds up.
func clickN(s *Session, clock *common.FakeClock, n int) {
	for i := 0; i < n; i++ {
		s.Click()
		clock.Advance(2 * time.Second)
	}
}

func TestManager_OpenFreshAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewFileSnapshotRepository(t.TempDir(), nil)
	m, clock := newTestManager(t, repo)

	s, err := m.Open(ctx, "default")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.Dirty())
	assert.Equal(t, 1, m.Len())

	clickN(s, clock, 20)
	s.Tick()

	ok, err := s.Purchase("Agrafeuse Turbo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, s.Dirty())

	require.NoError(t, m.Close(ctx, s.ID))
	assert.Equal(t, 0, m.Len())

	_, err = m.Get(s.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionNotFound))

	reopened, err := m.Open(ctx, "default")
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, reopened.ID)

	v := reopened.View()
	assert.InDelta(t, 5.0, v.Money, 1e-9)
	assert.InDelta(t, 0.1, v.PassiveIncome, 1e-9)
	assert.Equal(t, int64(20), v.Stats.TotalClicks)
	assert.Equal(t, 1, v.Upgrades[0].Count)
	assert.Equal(t, 17.0, v.Upgrades[0].Cost)
}

func TestManager_OpenSameSlotReturnsOpenSession(t *testing.T) {
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(nil, nil).Once()
	m, _ := newTestManager(t, repo)

	first, err := m.Open(context.Background(), "default")
	require.NoError(t, err)
	second, err := m.Open(context.Background(), "default")
	require.NoError(t, err)

	assert.Same(t, first, second)
	repo.AssertExpectations(t)
}

func TestManager_OpenCorruptSave(t *testing.T) {
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "broken").Return(nil, errors.ErrSaveCorrupt(`missing required field "money"`, nil))
	m, _ := newTestManager(t, repo)

	s, err := m.Open(context.Background(), "broken")
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSaveCorrupt))
	assert.Equal(t, 0, m.Len())
}

func TestManager_OpenInvalidSlot(t *testing.T) {
	m, _ := newTestManager(t, new(repository.MockSnapshotRepository))

	_, err := m.Open(context.Background(), "../../etc")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}

func TestManager_OpenRestoresSnapshot(t *testing.T) {
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(&domain.Snapshot{
		Money:           250,
		Stats:           domain.Stats{TotalMoneyEarned: 250},
		Upgrades:        []domain.UpgradeState{{Name: "Agrafeuse Turbo", Count: 0, Cost: 15}, {Name: "Stagiaire", Count: 2, Cost: 132.25}},
		CurrentPosition: "Assistant",
		TriggeredEvents: []bool{true},
	}, nil)
	m, clock := newTestManager(t, repo)

	s, err := m.Open(context.Background(), "default")
	require.NoError(t, err)

	st := s.Status()
	assert.Equal(t, 250.0, st.Money)
	assert.Equal(t, 2.0, st.PassiveIncome)
	assert.Equal(t, "Assistant", st.CurrentRank)
	assert.Equal(t, "PDG", st.NextRank)
	assert.Equal(t, 50000.0, st.NextRankThreshold)

	clock.Advance(time.Second)
	s.Tick()
	_, ok := s.Pending()
	assert.False(t, ok, "restored story event does not fire again")
}

func TestSession_StatusAtTopOfLadder(t *testing.T) {
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(&domain.Snapshot{
		Money:           60000,
		Upgrades:        []domain.UpgradeState{},
		CurrentPosition: "PDG",
	}, nil)
	m, _ := newTestManager(t, repo)

	s, err := m.Open(context.Background(), "default")
	require.NoError(t, err)

	st := s.Status()
	assert.Equal(t, "PDG", st.CurrentRank)
	assert.Empty(t, st.NextRank)
}

func TestSession_TickUsesWallClock(t *testing.T) {
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(&domain.Snapshot{
		Upgrades: []domain.UpgradeState{{Name: "Agrafeuse Turbo"}, {Name: "Stagiaire", Count: 3, Cost: 150}},
	}, nil)
	m, clock := newTestManager(t, repo)

	s, err := m.Open(context.Background(), "default")
	require.NoError(t, err)

	s.Tick()
	assert.False(t, s.Dirty(), "zero elapsed is not a change")

	clock.Advance(1500 * time.Millisecond)
	s.Tick()
	assert.InDelta(t, 4.5, s.View().Money, 1e-9)
	assert.Equal(t, 1500*time.Millisecond, s.View().Now)

	// a clock stepping backwards does not rewind the engine
	clock.Set(testStart)
	s.Tick()
	assert.InDelta(t, 4.5, s.View().Money, 1e-9)
}

func TestSession_ClickCombo(t *testing.T) {
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(nil, nil)
	m, clock := newTestManager(t, repo)

	s, err := m.Open(context.Background(), "default")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, s.Click(), 1e-9)
	clock.Advance(500 * time.Millisecond)
	assert.InDelta(t, 1.1, s.Click(), 1e-9)
	clock.Advance(500 * time.Millisecond)
	assert.InDelta(t, 1.2, s.Click(), 1e-9)
	clock.Advance(1500 * time.Millisecond)
	assert.InDelta(t, 1.0, s.Click(), 1e-9)
}

func TestSession_Purchase(t *testing.T) {
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(nil, nil)
	m, clock := newTestManager(t, repo)

	s, err := m.Open(context.Background(), "default")
	require.NoError(t, err)

	ok, err := s.Purchase("Licorne")
	assert.False(t, ok)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUpgradeNotFound))

	ok, err = s.Purchase("Agrafeuse Turbo")
	require.NoError(t, err)
	assert.False(t, ok, "cannot afford")
	assert.False(t, s.Dirty(), "declined purchase changes nothing")

	clickN(s, clock, 15)
	ok, err = s.Purchase("Agrafeuse Turbo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.0, s.View().Money, 1e-9)
}

func TestManager_SaveAllOnlyDirty(t *testing.T) {
	ctx := context.Background()
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("Save", mock.Anything, "busy", mock.AnythingOfType("*domain.Snapshot")).Return(nil).Once()
	metrics := &countingMetrics{}
	m, _ := newTestManager(t, repo, WithMetrics(metrics))

	busy, err := m.Open(ctx, "busy")
	require.NoError(t, err)
	_, err = m.Open(ctx, "idle")
	require.NoError(t, err)

	busy.Click()
	require.NoError(t, m.SaveAll(ctx))
	assert.False(t, busy.Dirty())

	// nothing changed since
	require.NoError(t, m.SaveAll(ctx))

	repo.AssertExpectations(t)
	assert.Equal(t, 2, metrics.opened)
	assert.Equal(t, 1, metrics.saves)
}

func TestManager_SaveFailureKeepsDirty(t *testing.T) {
	ctx := context.Background()
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(nil, nil)
	repo.On("Save", mock.Anything, "default", mock.Anything).Return(errors.ErrDatabaseError("save snapshot", assert.AnError))
	metrics := &countingMetrics{}
	m, _ := newTestManager(t, repo, WithMetrics(metrics))

	s, err := m.Open(ctx, "default")
	require.NoError(t, err)
	s.Click()

	err = m.Save(ctx, s.ID)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDatabaseError))
	assert.True(t, s.Dirty())
	assert.Equal(t, 1, metrics.failures)

	err = m.Close(ctx, s.ID)
	require.Error(t, err)
	assert.Equal(t, 1, m.Len(), "session stays open when its final save fails")
}

func TestManager_SaveUnknownSession(t *testing.T) {
	m, _ := newTestManager(t, new(repository.MockSnapshotRepository))

	err := m.Save(context.Background(), "missing")
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionNotFound))

	_, err = m.Flush(context.Background(), "missing")
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionNotFound))
}

func TestManager_FlushPublishesUnlocks(t *testing.T) {
	ctx := context.Background()
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(nil, nil)
	publisher := client.NewMockUnlockPublisher()
	metrics := &countingMetrics{}
	m, clock := newTestManager(t, repo,
		WithPublisher(publisher, client.RetryConfig{MaxAttempts: 1}),
		WithMetrics(metrics),
	)

	s, err := m.Open(ctx, "default")
	require.NoError(t, err)

	publisher.On("PublishUnlock", mock.Anything, s.ID, mock.MatchedBy(func(u domain.Unlock) bool {
		return u.Kind == domain.UnlockKindStoryEvent && u.Title == "Premier Café"
	})).Return(nil).Once()

	clickN(s, clock, 10)
	s.Tick()

	n, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, "Premier Café", n.Title)
	assert.Equal(t, domain.PriorityStory, n.Priority)

	delivered, err := m.Flush(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	// the outbox is drained
	delivered, err = m.Flush(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, delivered)

	publisher.AssertExpectations(t)
	assert.Equal(t, 1, metrics.published)
}

func TestManager_FlushFailureDoesNotTouchState(t *testing.T) {
	ctx := context.Background()
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(nil, nil)
	publisher := client.NewMockUnlockPublisher()
	publisher.On("PublishUnlock", mock.Anything, mock.Anything, mock.Anything).
		Return(&client.BadRequestError{Message: "rejected"}).Once()
	m, clock := newTestManager(t, repo, WithPublisher(publisher, client.DefaultRetryConfig()))

	s, err := m.Open(ctx, "default")
	require.NoError(t, err)
	clickN(s, clock, 10)
	s.Tick()
	before := s.View()

	delivered, err := m.Flush(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	assert.Equal(t, before, s.View())

	publisher.AssertExpectations(t)
}

func TestManager_FlushWithoutPublisherDrains(t *testing.T) {
	ctx := context.Background()
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(nil, nil)
	m, clock := newTestManager(t, repo)

	s, err := m.Open(ctx, "default")
	require.NoError(t, err)
	clickN(s, clock, 10)
	s.Tick()

	delivered, err := m.Flush(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	assert.Empty(t, s.drainUnlocks())
}

func TestManager_CapacityEvictionSavesDirtySession(t *testing.T) {
	ctx := context.Background()
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("Save", mock.Anything, "first", mock.AnythingOfType("*domain.Snapshot")).Return(nil).Once()
	metrics := &countingMetrics{}
	m, _ := newTestManager(t, repo, WithCapacity(1, time.Hour), WithMetrics(metrics))

	first, err := m.Open(ctx, "first")
	require.NoError(t, err)
	first.Click()

	_, err = m.Open(ctx, "second")
	require.NoError(t, err)

	assert.Equal(t, 1, m.Len())
	_, err = m.Get(first.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionNotFound))

	repo.AssertExpectations(t)
	assert.Equal(t, 1, metrics.closed)
}

func TestManager_CloseAll(t *testing.T) {
	ctx := context.Background()
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()
	m, _ := newTestManager(t, repo)

	_, err := m.Open(ctx, "a")
	require.NoError(t, err)
	_, err = m.Open(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, m.CloseAll(ctx))
	assert.Equal(t, 0, m.Len())
	repo.AssertExpectations(t)
}

func TestSession_ConcurrentClicks(t *testing.T) {
	repo := new(repository.MockSnapshotRepository)
	repo.On("Load", mock.Anything, "default").Return(nil, nil)
	m, clock := newTestManager(t, repo)

	s, err := m.Open(context.Background(), "default")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Click()
				clock.Advance(time.Millisecond)
				s.Tick()
				_ = s.Status()
			}
		}()
	}
	wg.Wait()

	v := s.View()
	assert.Equal(t, int64(800), v.Stats.TotalClicks)
	assert.GreaterOrEqual(t, v.Money, 800.0)
}

func TestManager_DeleteSlots(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewFileSnapshotRepository(t.TempDir(), nil)
	require.NoError(t, repo.Save(ctx, "a", &domain.Snapshot{Money: 1}))
	require.NoError(t, repo.Save(ctx, "b", &domain.Snapshot{Money: 2}))
	m, _ := newTestManager(t, repo)

	s, err := m.Open(ctx, "b")
	require.NoError(t, err)

	err = m.DeleteSlots(ctx, "a", "b")
	assert.True(t, errors.HasCode(err, errors.ErrCodeSlotInUse))
	slots, err := repo.ListSlots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slots, "a refused delete removes nothing")

	require.NoError(t, m.DeleteSlots(ctx, "a"))
	slots, err = repo.ListSlots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, slots)

	require.NoError(t, m.Close(ctx, s.ID))
	require.NoError(t, m.DeleteSlots(ctx, "b", "never-saved"))
	slots, err = repo.ListSlots(ctx)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestManager_DeleteSlotsInvalidSlot(t *testing.T) {
	repo := new(repository.MockSnapshotRepository)
	m, _ := newTestManager(t, repo)

	err := m.DeleteSlots(context.Background(), "ok", "../../etc")

	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

type bulkSnapshotRepository struct {
	*repository.MockSnapshotRepository
}

func (r bulkSnapshotRepository) DeleteSlots(ctx context.Context, slots []string) (int64, error) {
	args := r.Called(ctx, slots)
	return args.Get(0).(int64), args.Error(1)
}

func TestManager_DeleteSlotsUsesBulkDelete(t *testing.T) {
	repo := bulkSnapshotRepository{new(repository.MockSnapshotRepository)}
	repo.On("DeleteSlots", mock.Anything, []string{"a", "b"}).Return(int64(2), nil).Once()
	m, _ := newTestManager(t, repo)

	require.NoError(t, m.DeleteSlots(context.Background(), "a", "b"))

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestManager_ReloadCatalog(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, repository.NewFileSnapshotRepository(t.TempDir(), nil))

	before, err := m.Open(ctx, "before")
	require.NoError(t, err)

	// an empty catalog path reloads the built-in catalog
	require.NoError(t, m.ReloadCatalog())

	after, err := m.Open(ctx, "after")
	require.NoError(t, err)

	assert.Len(t, before.View().Upgrades, 2, "open sessions keep their catalog")
	assert.Len(t, after.View().Upgrades, len(config.DefaultCatalog().Upgrades))
}

func TestManager_ReloadCatalogFailureKeepsCatalog(t *testing.T) {
	catalogCache := cache.NewInMemoryCatalogCache(testCatalog(), "/nonexistent/catalog.json", nil)
	m := NewManager(new(repository.MockSnapshotRepository), catalogCache, nil)

	require.Error(t, m.ReloadCatalog())
	assert.NotNil(t, catalogCache.GetUpgradeByName("Agrafeuse Turbo"))
}
