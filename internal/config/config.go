// Package config provides configuration for a Vellum database instance.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vellumdb/vellum/internal/dialect"
	"github.com/vellumdb/vellum/internal/updater"
)

// Config holds the configuration for one database instance.
type Config struct {
	// CatalogName is the database's catalog name
	CatalogName string `json:"catalog_name" yaml:"catalog_name"`

	// Dialect selects the SQL surface: google_standard_sql or postgresql
	Dialect string `json:"dialect" yaml:"dialect"`

	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// History configuration
	History HistoryConfig `json:"history" yaml:"history"`

	// Schema configuration
	Schema SchemaConfig `json:"schema" yaml:"schema"`
}

// HistoryConfig holds schema version log configuration.
type HistoryConfig struct {
	// Enabled controls whether committed versions are logged
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the version log database path; defaults under DataDir
	Path string `json:"path" yaml:"path"`
}

// SchemaConfig holds schema engine limits.
type SchemaConfig struct {
	// StreamQuota is the max change streams per table and per column (default 3)
	StreamQuota int `json:"stream_quota" yaml:"stream_quota"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		CatalogName: "vellum",
		Dialect:     dialect.GoogleSQL.String(),
		DataDir:     "./data/vellum",
		History: HistoryConfig{
			Enabled: true,
		},
		Schema: SchemaConfig{
			StreamQuota: updater.DefaultStreamQuota,
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/vellum"
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.DataDir, "history.db")
	}
}

// ParseDialect returns the configured dialect.
func (c *Config) ParseDialect() (dialect.Dialect, error) {
	return dialect.Parse(c.Dialect)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.CatalogName == "" {
		return fmt.Errorf("catalog_name is required")
	}
	if _, err := dialect.Parse(c.Dialect); err != nil {
		return fmt.Errorf("invalid dialect: %s (must be google_standard_sql or postgresql)", c.Dialect)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Schema.StreamQuota < 1 {
		return fmt.Errorf("schema.stream_quota must be at least 1, got %d", c.Schema.StreamQuota)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the VELLUM_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("VELLUM_CATALOG_NAME"); v != "" {
		cfg.CatalogName = v
	}
	if v := os.Getenv("VELLUM_DIALECT"); v != "" {
		cfg.Dialect = v
	}
	if v := os.Getenv("VELLUM_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("VELLUM_HISTORY_ENABLED"); v != "" {
		cfg.History.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("VELLUM_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("VELLUM_SCHEMA_STREAM_QUOTA"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Schema.StreamQuota)
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.History.Enabled && c.History.Path != "" {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
