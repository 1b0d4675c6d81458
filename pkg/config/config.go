// Package config provides the configuration for the cell store: the
// database connection, query planning limits, the plan cache and the
// ambient logging and metrics settings. Configurations load from YAML
// files with ${VAR} environment substitution.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top level configuration.
type Config struct {
	// Database settings for the ClickHouse connection
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Query settings control resolution selection and fan-out limits
	Query QueryConfig `yaml:"query" json:"query"`

	// Cache settings for persisted query plans and table set snapshots
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Logging verbosity and output format
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics exposition
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// DatabaseConfig holds the ClickHouse connection settings.
type DatabaseConfig struct {
	// Addresses of the ClickHouse native protocol endpoints
	Addresses []string `yaml:"addresses" json:"addresses"`
	// Database to operate in
	Database string `yaml:"database" json:"database"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`

	// Compression for the wire protocol: "lz4", "zstd" or "none"
	Compression string `yaml:"compression" json:"compression"`

	DialTimeout  time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	MaxOpenConns int           `yaml:"max_open_conns" json:"max_open_conns"`
}

// QueryConfig bounds the work a single cell query may cause.
type QueryConfig struct {
	// MaxFanout caps the per-row decompaction expansion
	MaxFanout int `yaml:"max_fanout" json:"max_fanout"`
	// AllowCoarser permits relaxed plans reading coarser base tables
	AllowCoarser bool `yaml:"allow_coarser" json:"allow_coarser"`
	// WindowMaxSize caps the cell count of one window batch
	WindowMaxSize int `yaml:"window_max_size" json:"window_max_size"`
}

// CacheConfig controls the plan cache serialization.
type CacheConfig struct {
	// Directory holding cached plans, empty disables the cache
	Directory string `yaml:"directory" json:"directory"`
	// Compression of cache entries: "zstd", "lz4" or "none"
	Compression string `yaml:"compression" json:"compression"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level" json:"level"`
	// Format is "json" or "console"
	Format string `yaml:"format" json:"format"`
}

// MetricsConfig controls the Prometheus exposition.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// Default returns a configuration with sensible defaults for a local
// single-node setup.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Addresses:    []string{"localhost:9000"},
			Database:     "default",
			Username:     "default",
			Compression:  "lz4",
			DialTimeout:  5 * time.Second,
			ReadTimeout:  5 * time.Minute,
			MaxOpenConns: 4,
		},
		Query: QueryConfig{
			MaxFanout:     2401,
			WindowMaxSize: 16000,
		},
		Cache: CacheConfig{
			Compression: "zstd",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "h3cellstore",
		},
	}
}

// Validate checks the configuration for values that would fail later at
// connection or query time.
func (c *Config) Validate() error {
	if len(c.Database.Addresses) == 0 {
		return fmt.Errorf("database: at least one address is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database: database name is required")
	}
	switch c.Database.Compression {
	case "lz4", "zstd", "none":
	default:
		return fmt.Errorf("database: unknown compression %q", c.Database.Compression)
	}
	if c.Query.MaxFanout < 1 {
		return fmt.Errorf("query: max_fanout must be > 0")
	}
	if c.Query.WindowMaxSize < 1 {
		return fmt.Errorf("query: window_max_size must be > 0")
	}
	switch c.Cache.Compression {
	case "zstd", "lz4", "none":
	default:
		return fmt.Errorf("cache: unknown compression %q", c.Cache.Compression)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	return nil
}

// Load reads a YAML configuration file on top of the defaults.
// ${VAR} references are substituted from the environment before parsing.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	content := substituteEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func Save(filePath string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
