package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/AccelByte/extend-idle-progression/pkg/logger"
)

// Save backends understood by the driver.
const (
	SaveBackendFile     = "file"
	SaveBackendSQLite   = "sqlite"
	SaveBackendPostgres = "postgres"
)

// AppConfig holds process-level settings read from the environment.
// Database connection settings are read separately by db.NewConfigFromEnv.
type AppConfig struct {
	CatalogPath      string
	SaveBackend      string
	SaveDir          string
	SQLitePath       string
	SaveSlot         string
	UnlockWebhookURL string
	MetricsAddr      string
	AutosaveInterval time.Duration
	Log              logger.Config
}

// LoadAppConfig loads a .env file when present, then reads the environment.
func LoadAppConfig() (*AppConfig, error) {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	cfg := &AppConfig{
		CatalogPath:      getEnv("CATALOG_PATH", ""),
		SaveBackend:      getEnv("SAVE_BACKEND", SaveBackendFile),
		SaveDir:          getEnv("SAVE_DIR", "saves"),
		SQLitePath:       getEnv("SQLITE_PATH", "saves/progression.db"),
		SaveSlot:         getEnv("SAVE_SLOT", "default"),
		UnlockWebhookURL: getEnv("UNLOCK_WEBHOOK_URL", ""),
		MetricsAddr:      getEnv("METRICS_ADDR", ""),
		Log: logger.Config{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", "text"),
			ServiceName: getEnv("SERVICE_NAME", logger.DefaultServiceName),
			Version:     getEnv("APP_VERSION", logger.DefaultVersion),
			Environment: getEnv("APP_ENV", "dev"),
		},
	}

	seconds, err := strconv.Atoi(getEnv("AUTOSAVE_INTERVAL", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTOSAVE_INTERVAL value: %w", err)
	}
	cfg.AutosaveInterval = time.Duration(seconds) * time.Second

	switch cfg.SaveBackend {
	case SaveBackendFile, SaveBackendSQLite, SaveBackendPostgres:
	default:
		return nil, fmt.Errorf("invalid SAVE_BACKEND %q (must be file, sqlite or postgres)", cfg.SaveBackend)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
