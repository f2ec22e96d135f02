package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogLoader loads and validates game content from a JSON or YAML file.
// It performs file reading, parsing, default filling, and validation.
type CatalogLoader struct {
	catalogPath string
	validator   *Validator
	logger      *slog.Logger
}

// NewCatalogLoader creates a new CatalogLoader instance.
//
// Parameters:
//   - catalogPath: Path to catalog.json, catalog.yaml or catalog.yml
//   - logger: Structured logger for operational logging
func NewCatalogLoader(catalogPath string, logger *slog.Logger) *CatalogLoader {
	return &CatalogLoader{
		catalogPath: catalogPath,
		validator:   NewValidator(),
		logger:      logger,
	}
}

// LoadCatalog loads the catalog file and returns a validated Catalog.
// This is a "fail fast" operation: an invalid catalog prevents startup.
func (l *CatalogLoader) LoadCatalog() (*Catalog, error) {
	data, err := os.ReadFile(l.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	catalog, err := ParseCatalog(data, formatFromPath(l.catalogPath))
	if err != nil {
		return nil, err
	}

	if err := l.validator.Validate(catalog); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}

	l.logger.Info("Catalog loaded successfully",
		"upgrades", len(catalog.Upgrades),
		"story_events", len(catalog.StoryEvents),
		"achievements", len(catalog.Achievements),
		"ranks", len(catalog.Ranks),
		"catalog_path", l.catalogPath,
	)

	return catalog, nil
}

// Format is the encoding of a catalog document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseCatalog decodes a catalog document and fills tuning defaults.
// It does not validate.
func ParseCatalog(data []byte, format Format) (*Catalog, error) {
	var catalog Catalog

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
		}
	}

	catalog.Tuning = catalog.Tuning.withDefaults()

	return &catalog, nil
}

// LoadCatalogOrDefault loads the catalog at path, or returns DefaultCatalog()
// when path is empty.
func LoadCatalogOrDefault(path string, logger *slog.Logger) (*Catalog, error) {
	if path == "" {
		logger.Info("No catalog path configured, using built-in catalog")
		return DefaultCatalog(), nil
	}
	return NewCatalogLoader(path, logger).LoadCatalog()
}
