// Package config provides loading and parsing of cerno.yaml configuration files.
// A cerno.yaml describes cache, analysis, server, and export settings for a
// review session, so teams can keep scan review behavior in the repository
// next to their scan data.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a cerno.yaml configuration file.
type Config struct {
	// Cache configures endpoint parse memoization.
	Cache *CacheConfig `yaml:"cache,omitempty"`

	// Analysis configures coverage analysis behavior.
	Analysis *AnalysisConfig `yaml:"analysis,omitempty"`

	// Server configures the gRPC analysis server.
	Server *ServerConfig `yaml:"server,omitempty"`

	// Registry configures service registration for the server.
	Registry *RegistryConfig `yaml:"registry,omitempty"`

	// Filters holds default filter expressions applied before analysis.
	Filters *FiltersConfig `yaml:"filters,omitempty"`

	// Export configures report output.
	Export *ExportConfig `yaml:"export,omitempty"`
}

// CacheConfig configures the endpoint parse cache.
type CacheConfig struct {
	// Backend selects the cache implementation: "memory" or "redis".
	// Default: "memory".
	Backend string `yaml:"backend,omitempty"`

	// Capacity is the entry limit for the in-memory cache.
	// Default: 128.
	Capacity int `yaml:"capacity,omitempty"`

	// RedisURL is the connection URL for the redis backend
	// (e.g., "redis://localhost:6379/0").
	RedisURL string `yaml:"redis_url,omitempty"`

	// KeyPrefix is the redis key prefix.
	// Default: "cerno:parse:".
	KeyPrefix string `yaml:"key_prefix,omitempty"`

	// TTL is the redis entry lifetime.
	// Format: Go duration string (e.g., "30m", "1h").
	// Default: 1h.
	TTL string `yaml:"ttl,omitempty"`
}

// GetBackend returns the configured backend or the default value.
func (c *CacheConfig) GetBackend() string {
	if c == nil || c.Backend == "" {
		return "memory"
	}
	return c.Backend
}

// GetCapacity returns the configured capacity or the default value.
func (c *CacheConfig) GetCapacity() int {
	if c == nil || c.Capacity <= 0 {
		return 128
	}
	return c.Capacity
}

// GetKeyPrefix returns the configured key prefix or the default value.
func (c *CacheConfig) GetKeyPrefix() string {
	if c == nil || c.KeyPrefix == "" {
		return "cerno:parse:"
	}
	return c.KeyPrefix
}

// GetTTL parses the TTL string and returns a duration.
// Returns the default value if not set or invalid.
func (c *CacheConfig) GetTTL() time.Duration {
	if c == nil || c.TTL == "" {
		return time.Hour
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// AnalysisConfig configures coverage analysis behavior.
type AnalysisConfig struct {
	// StrictEmpty makes analysis of an empty record list an error instead
	// of an empty result.
	StrictEmpty bool `yaml:"strict_empty,omitempty"`

	// MinSeverity is the lowest severity included in scan comparisons
	// (e.g., "medium").
	MinSeverity string `yaml:"min_severity,omitempty"`
}

// ServerConfig configures the gRPC analysis server.
type ServerConfig struct {
	// Address is the listen address.
	// Default: ":9090".
	Address string `yaml:"address,omitempty"`

	// ShutdownTimeout is the time to wait for graceful shutdown.
	// Format: Go duration string (e.g., "30s").
	// Default: 30s.
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
}

// GetAddress returns the configured address or the default value.
func (s *ServerConfig) GetAddress() string {
	if s == nil || s.Address == "" {
		return ":9090"
	}
	return s.Address
}

// GetShutdownTimeout parses the shutdown timeout string and returns a duration.
// Returns the default value if not set or invalid.
func (s *ServerConfig) GetShutdownTimeout() time.Duration {
	if s == nil || s.ShutdownTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RegistryConfig configures etcd service registration.
type RegistryConfig struct {
	// Endpoints lists etcd endpoints. Overridden by the
	// CERNO_REGISTRY_ENDPOINTS environment variable when set.
	Endpoints []string `yaml:"endpoints,omitempty"`

	// Namespace is the key namespace for registrations.
	// Default: "cerno".
	Namespace string `yaml:"namespace,omitempty"`
}

// GetNamespace returns the configured namespace or the default value.
func (r *RegistryConfig) GetNamespace() string {
	if r == nil || r.Namespace == "" {
		return "cerno"
	}
	return r.Namespace
}

// FiltersConfig holds default filter expressions.
type FiltersConfig struct {
	// Finding is a CEL expression over findings
	// (e.g., `severity_level >= 2`).
	Finding string `yaml:"finding,omitempty"`

	// Record is a CEL expression over coverage records
	// (e.g., `pair_count > 0`).
	Record string `yaml:"record,omitempty"`
}

// ExportConfig configures report output.
type ExportConfig struct {
	// Format selects the output format: "json" or "csv".
	// Default: "json".
	Format string `yaml:"format,omitempty"`

	// OutputDir is the directory reports are written to.
	// Default: ".".
	OutputDir string `yaml:"output_dir,omitempty"`
}

// GetFormat returns the configured format or the default value.
func (e *ExportConfig) GetFormat() string {
	if e == nil || e.Format == "" {
		return "json"
	}
	return e.Format
}

// GetOutputDir returns the configured output directory or the default value.
func (e *ExportConfig) GetOutputDir() string {
	if e == nil || e.OutputDir == "" {
		return "."
	}
	return e.OutputDir
}

// Load reads and parses a cerno.yaml file from the given path.
// If the path is a directory, it looks for cerno.yaml or cerno.yml in that
// directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	var configPath string
	if info.IsDir() {
		yamlPath := filepath.Join(path, "cerno.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "cerno.yml")
			if _, err := os.Stat(ymlPath); err == nil {
				configPath = ymlPath
			} else {
				return nil, fmt.Errorf("no cerno.yaml or cerno.yml found in %s", path)
			}
		}
	} else {
		configPath = path
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// LoadFromDir searches for cerno.yaml starting from the given directory and
// walking up to parent directories until found or root is reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		config, err := Load(absDir)
		if err == nil {
			return config, nil
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return nil, fmt.Errorf("no cerno.yaml found in %s or parent directories", dir)
		}
		absDir = parent
	}
}

// LoadFromCurrentDir loads cerno.yaml from the current working directory.
func LoadFromCurrentDir() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadFromDir(cwd)
}
