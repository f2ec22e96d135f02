package main

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-idle-progression/pkg/cache"
	"github.com/AccelByte/extend-idle-progression/pkg/common"
	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
	"github.com/AccelByte/extend-idle-progression/pkg/repository"
	"github.com/AccelByte/extend-idle-progression/pkg/session"
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
		},
		Tuning: tuning,
	}
}

type fixture struct {
	manager *session.Manager
	session *session.Session
	repo    repository.SnapshotRepository
	clock   *common.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := repository.NewFileSnapshotRepository(t.TempDir(), nil)
	clock := common.NewFakeClock(testStart)
	manager := session.NewManager(repo,
		cache.NewInMemoryCatalogCache(testCatalog(), "", logger.Discard()),
		logger.Discard(),
		session.WithClock(clock),
		session.WithRandSource(func() *rand.Rand { return rand.New(rand.NewPCG(5, 6)) }),
	)

	s, err := manager.Open(context.Background(), "default")
	require.NoError(t, err)

	return &fixture{manager: manager, session: s, repo: repo, clock: clock}
}

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

// screenText returns the whole screen as lines with trailing spaces trimmed.
func screenText(screen tcell.SimulationScreen) []string {
	cells, width, height := screen.GetContents()
	lines := make([]string, height)
	for y := 0; y < height; y++ {
		var b strings.Builder
		for x := 0; x < width; x++ {
			runes := cells[y*width+x].Runes
			if len(runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(string(runes))
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return lines
}
