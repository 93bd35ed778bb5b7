// Package config provides configuration management for the dashql CLI and
// server. Values are merged from defaults, the dashql.yaml project file,
// DASHQL_ environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dashql/internal/adapter"
)

// DatabaseConfig holds the analytical database configuration.
type DatabaseConfig struct {
	Type string `koanf:"type"` // duckdb
	Path string `koanf:"path"` // file path or :memory:
}

// GrafanaConfig holds the dashboard push target.
type GrafanaConfig struct {
	URL      string `koanf:"url"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// AnthropicConfig holds plan-compiler model settings. The API key itself is
// read from the environment by the SDK and never lives in config files.
type AnthropicConfig struct {
	Model     string `koanf:"model"`
	MaxTokens int64  `koanf:"max_tokens"`
}

// ServerConfig holds HTTP API server settings.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// Config holds all dashql configuration options.
type Config struct {
	DataDir       string           `koanf:"data_dir"`
	StatePath     string           `koanf:"state_path"`
	DatasourceUID string           `koanf:"datasource_uid"`
	Verbose       bool             `koanf:"verbose"`
	Database      *DatabaseConfig  `koanf:"database"`
	Grafana       *GrafanaConfig   `koanf:"grafana"`
	Anthropic     *AnthropicConfig `koanf:"anthropic"`
	Server        *ServerConfig    `koanf:"server"`
}

// Default configuration values.
const (
	DefaultDataDir       = "data"
	DefaultStateFile     = ".dashql/history.db"
	DefaultDatabaseType  = "duckdb"
	DefaultDatabasePath  = ".dashql/warehouse.duckdb"
	DefaultDatasourceUID = "DuckDB"
	DefaultGrafanaURL    = "http://localhost:3000"
	DefaultGrafanaUser   = "admin"
	DefaultMaxTokens     = 2048
	DefaultServerPort    = 8080
)

// Validate checks the database section against the adapter registry.
func (c *Config) Validate() error {
	if c.Database == nil || c.Database.Type == "" {
		return fmt.Errorf("database type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(c.Database.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      c.Database.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}
