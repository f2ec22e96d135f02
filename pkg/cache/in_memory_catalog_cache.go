package cache

import (
	"log/slog"
	"sync"

	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/logger"
)

// InMemoryCatalogCache provides O(1) in-memory lookups over the catalog.
// Indexes are rebuilt as a whole on construction and on Reload.
type InMemoryCatalogCache struct {
	catalog        *config.Catalog
	upgradesByName map[string]*domain.Upgrade // "Stagiaire" -> Upgrade
	rankIndex      map[string]int             // rank name -> ladder position
	catalogPath    string                     // empty means built-in catalog
	mu             sync.RWMutex
	logger         *slog.Logger
}

// NewInMemoryCatalogCache creates a new cache from a validated catalog.
//
// Parameters:
//   - catalog: Validated catalog
//   - catalogPath: Path used by Reload; empty reloads the built-in catalog
//   - log: Structured logger for operational logging, nil discards
func NewInMemoryCatalogCache(catalog *config.Catalog, catalogPath string, log *slog.Logger) *InMemoryCatalogCache {
	cache := &InMemoryCatalogCache{
		catalogPath: catalogPath,
		logger:      logger.OrDiscard(log),
	}

	cache.buildCache(catalog)

	return cache
}

// buildCache replaces all cache data with indexes over catalog.
func (c *InMemoryCatalogCache) buildCache(catalog *config.Catalog) {
	upgrades := make(map[string]*domain.Upgrade, len(catalog.Upgrades))
	for i := range catalog.Upgrades {
		upgrades[catalog.Upgrades[i].Name] = &catalog.Upgrades[i]
	}

	ranks := make(map[string]int, len(catalog.Ranks))
	for i, r := range catalog.Ranks {
		ranks[r.Name] = i
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.catalog = catalog
	c.upgradesByName = upgrades
	c.rankIndex = ranks

	c.logger.Info("Catalog cache built",
		"upgrades", len(upgrades),
		"ranks", len(ranks),
		"story_events", len(catalog.StoryEvents),
		"achievements", len(catalog.Achievements),
	)
}

// GetCatalog returns the current catalog.
func (c *InMemoryCatalogCache) GetCatalog() *config.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.catalog
}

// GetUpgradeByName retrieves an upgrade definition by name.
// Returns nil if the upgrade does not exist.
func (c *InMemoryCatalogCache) GetUpgradeByName(name string) *domain.Upgrade {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.upgradesByName[name]
}

// GetRankByName retrieves a rank by name.
func (c *InMemoryCatalogCache) GetRankByName(name string) *domain.Rank {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.rankIndex[name]
	if !ok {
		return nil
	}
	return &c.catalog.Ranks[idx]
}

// GetNextRank returns the rank after the named one.
func (c *InMemoryCatalogCache) GetNextRank(name string) *domain.Rank {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.rankIndex[name]
	if !ok || idx+1 >= len(c.catalog.Ranks) {
		return nil
	}
	return &c.catalog.Ranks[idx+1]
}

// Reload reloads the cache from the catalog file. Engines already built keep
// the catalog they were built from; new sessions pick up the reloaded one.
func (c *InMemoryCatalogCache) Reload() error {
	catalog, err := config.LoadCatalogOrDefault(c.catalogPath, c.logger)
	if err != nil {
		return err
	}

	c.buildCache(catalog)

	c.logger.Info("Catalog cache reloaded successfully")

	return nil
}
