package config

import (
	"fmt"
	"os"
	"strconv"

	"datacatalog/internal/models"
)

// Config holds server settings and the default import limits, read from the
// environment (a .env file is loaded by the server via godotenv autoload).
type Config struct {
	Port       int
	MaxDepth   int
	MaxRecords int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:       8080,
		MaxDepth:   models.DefaultMaxDepth,
		MaxRecords: models.DefaultMaxRecords,
	}

	var err error
	if cfg.Port, err = intFromEnv("PORT", cfg.Port); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = intFromEnv("IMPORT_MAX_DEPTH", cfg.MaxDepth); err != nil {
		return nil, err
	}
	if cfg.MaxRecords, err = intFromEnv("IMPORT_MAX_RECORDS", cfg.MaxRecords); err != nil {
		return nil, err
	}
	return cfg, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return value, nil
}
