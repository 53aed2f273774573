package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"datacatalog/internal/connector"
	"datacatalog/internal/models"
)

// FileConfig is the YAML config the CLI accepts in place of flags.
type FileConfig struct {
	Source SourceConfig         `yaml:"source"`
	Import models.ImportOptions `yaml:"import"`
}

type SourceConfig struct {
	Type   string `yaml:"type"`
	DSN    string `yaml:"dsn"`
	Schema string `yaml:"schema"`
}

func LoadFile(path string) (*FileConfig, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *FileConfig) validate() error {
	switch c.Source.Type {
	case connector.DriverPostgres, connector.DriverMySQL, connector.DriverSQLServer:
	default:
		return fmt.Errorf("source.type must be one of postgres, mysql, sqlserver")
	}
	if c.Source.DSN == "" {
		return errors.New("source.dsn is required")
	}
	if c.Source.Type == connector.DriverMySQL && c.Source.Schema == "" {
		return errors.New("source.schema is required for mysql")
	}
	if c.Import.PrimaryTable == "" {
		return errors.New("import.primaryTable is required")
	}
	return nil
}
