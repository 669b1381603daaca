package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultDataDir           = "."
	defaultServerPort        = "0.0.0.0:3000"
	defaultSnapshotInterval  = 12 * time.Hour
	defaultSnapshotRetain    = 5
	defaultLogLevel          = "info"
	defaultDBFilePermissions = 0666
)

type Config struct {
	DataDir           string
	ServerPort        string
	SnapshotDir       string
	SnapshotInterval  time.Duration
	SnapshotRetain    int
	LogLevel          string
	DBFilePermissions os.FileMode
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDir:           getEnvOrDefault("DATA_DIR", defaultDataDir),
		ServerPort:        getEnvOrDefault("SERVER_PORT", defaultServerPort),
		SnapshotInterval:  defaultSnapshotInterval,
		SnapshotRetain:    defaultSnapshotRetain,
		LogLevel:          getEnvOrDefault("LOG_LEVEL", defaultLogLevel),
		DBFilePermissions: defaultDBFilePermissions,
	}
	cfg.SnapshotDir = getEnvOrDefault("SNAPSHOT_DIR", filepath.Join(cfg.DataDir, "snapshots"))

	if value := os.Getenv("SNAPSHOT_INTERVAL"); value != "" {
		interval, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("parsing SNAPSHOT_INTERVAL: %w", err)
		}
		cfg.SnapshotInterval = interval
	}

	if value := os.Getenv("SNAPSHOT_RETAIN"); value != "" {
		retain, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("parsing SNAPSHOT_RETAIN: %w", err)
		}
		cfg.SnapshotRetain = retain
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot interval must be positive, got %s", c.SnapshotInterval)
	}
	if c.SnapshotRetain < 1 {
		return fmt.Errorf("snapshot retain count must be at least 1, got %d", c.SnapshotRetain)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "syncarr.db")
}

// SnapshotFilename names a scheduled snapshot file for a given export time.
func (c *Config) SnapshotFilename(exportedAt time.Time) string {
	return filepath.Join(c.SnapshotDir, "snapshot-"+exportedAt.UTC().Format("20060102-150405")+".json")
}
