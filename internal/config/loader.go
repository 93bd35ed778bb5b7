package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "dashql.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "dashql.yml"

var configFileUsed string

// ConfigFileUsed returns the path of the config file the last Load read, or
// empty when none was found.
func ConfigFileUsed() string {
	return configFileUsed
}

// findConfigFile finds the config file to use.
// Priority: explicit path > dashql.yaml > dashql.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if _, err := os.Stat(ConfigFileNameAlt); err == nil {
		return ConfigFileNameAlt
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not
// absolute. Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"data_dir":             DefaultDataDir,
		"state_path":           DefaultStateFile,
		"datasource_uid":       DefaultDatasourceUID,
		"verbose":              false,
		"database.type":        DefaultDatabaseType,
		"database.path":        DefaultDatabasePath,
		"grafana.url":          DefaultGrafanaURL,
		"grafana.user":         DefaultGrafanaUser,
		"grafana.password":     DefaultGrafanaUser,
		"anthropic.max_tokens": int64(DefaultMaxTokens),
		"server.port":          DefaultServerPort,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (DASHQL_ prefix)
	// Transform: DASHQL_DATABASE_PATH -> database.path
	if err := k.Load(env.Provider("DASHQL_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "DASHQL_"))
		for _, section := range []string{"database", "grafana", "anthropic", "server"} {
			if strings.HasPrefix(key, section+"_") {
				return section + "." + strings.TrimPrefix(key, section+"_")
			}
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")

			// The CLI uses --database for brevity; the config nests it
			if key == "database" {
				return "database.path", posflag.FlagVal(flags, f)
			}
			if key == "port" {
				return "server.port", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve file paths relative to the config file's directory
	baseDir := "."
	if configFileUsed != "" {
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}
	cfg.DataDir = resolvePathRelativeTo(cfg.DataDir, baseDir)
	cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, baseDir)
	if cfg.Database != nil && cfg.Database.Path != ":memory:" {
		cfg.Database.Path = resolvePathRelativeTo(cfg.Database.Path, baseDir)
	}

	return &cfg, nil
}
