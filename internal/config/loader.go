package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config   *Config
	yamlPath string
}

// NewLoader creates a new configuration loader.
// The YAML file is TM_CONFIG when set, otherwise config.yaml in the data directory.
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// NewLoaderFrom creates a loader that reads the given YAML file
func NewLoaderFrom(yamlPath string) *Loader {
	return &Loader{
		config:   NewConfig(),
		yamlPath: yamlPath,
	}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML file, when present
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	if err := loadYAML(l.config, l.configFilePath()); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) configFilePath() string {
	if l.yamlPath != "" {
		return l.yamlPath
	}
	if path := os.Getenv("TM_CONFIG"); path != "" {
		return path
	}
	dir := l.config.Database.Dir
	if envDir := os.Getenv("TM_DB_DIR"); envDir != "" {
		dir = envDir
	}
	return filepath.Join(dir, "config.yaml")
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// Database overrides
	DBDir            *string
	DBFilename       *string
	DBQueryTimeout   *time.Duration
	DBWriteTimeout   *time.Duration
	DBDirPermissions *uint32

	// Display overrides
	TimeFormat  *string
	DateFormat  *string
	RecentLimit *int

	// Application overrides
	Timeout *time.Duration
	Verbose *bool

	// Server overrides
	ServerAddr *string

	// Logging overrides
	LogLevel  *string
	LogFormat *string
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	// Database overrides
	if overrides.DBDir != nil {
		config.Database.Dir = *overrides.DBDir
	}
	if overrides.DBFilename != nil {
		config.Database.Filename = *overrides.DBFilename
	}
	if overrides.DBQueryTimeout != nil {
		config.Database.QueryTimeout = *overrides.DBQueryTimeout
	}
	if overrides.DBWriteTimeout != nil {
		config.Database.WriteTimeout = *overrides.DBWriteTimeout
	}
	if overrides.DBDirPermissions != nil {
		config.Database.DirPermissions = *overrides.DBDirPermissions
	}

	// Display overrides
	if overrides.TimeFormat != nil {
		config.Display.TimeFormat = *overrides.TimeFormat
	}
	if overrides.DateFormat != nil {
		config.Display.DateFormat = *overrides.DateFormat
	}
	if overrides.RecentLimit != nil {
		config.Display.RecentLimit = *overrides.RecentLimit
	}

	// Application overrides
	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}

	// Server overrides
	if overrides.ServerAddr != nil {
		config.Server.Addr = *overrides.ServerAddr
	}

	// Logging overrides
	if overrides.LogLevel != nil {
		config.Logging.Level = *overrides.LogLevel
	}
	if overrides.LogFormat != nil {
		config.Logging.Format = *overrides.LogFormat
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setOctal(dst *uint32, key string) {
	if v := os.Getenv(key); v != "" {
		if p, err := strconv.ParseUint(v, 8, 32); err == nil {
			*dst = uint32(p)
		}
	}
}
