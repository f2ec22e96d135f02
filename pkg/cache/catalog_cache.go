package cache

import (
	"github.com/AccelByte/extend-idle-progression/pkg/config"
	"github.com/AccelByte/extend-idle-progression/pkg/domain"
)

// CatalogCache provides O(1) in-memory lookups over the loaded catalog.
// It is built at startup from the catalog file (or the built-in catalog).
// All lookups are read-only and thread-safe.
type CatalogCache interface {
	// GetCatalog returns the current catalog. Engines are built from it.
	// Callers must not mutate the result.
	GetCatalog() *config.Catalog

	// GetUpgradeByName retrieves an upgrade definition by name.
	// Returns nil if the upgrade does not exist.
	// Time complexity: O(1)
	GetUpgradeByName(name string) *domain.Upgrade

	// GetRankByName retrieves a rank by name.
	// Returns nil if the rank is not on the ladder.
	// Time complexity: O(1)
	GetRankByName(name string) *domain.Rank

	// GetNextRank returns the rank after the named one, or nil at the top of
	// the ladder or for an unknown name.
	// Time complexity: O(1)
	GetNextRank(name string) *domain.Rank

	// Reload reloads the cache from the catalog file.
	// Returns error if the file cannot be read or is invalid; the previous
	// catalog stays in place.
	Reload() error
}
