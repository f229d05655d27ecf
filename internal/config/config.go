package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for the task manager
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Validation  ValidationConfig  `yaml:"validation"`
	Display     DisplayConfig     `yaml:"display"`
	Application ApplicationConfig `yaml:"application"`
	Server      ServerConfig      `yaml:"server"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir            string        `yaml:"dir" env:"TM_DB_DIR"`
	Filename       string        `yaml:"filename" env:"TM_DB_FILENAME"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"TM_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"TM_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `yaml:"dir_permissions" env:"TM_DB_DIR_PERMISSIONS"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TitleMinLength       int `yaml:"title_min_length" env:"TM_VALIDATION_TITLE_MIN"`
	TitleMaxLength       int `yaml:"title_max_length" env:"TM_VALIDATION_TITLE_MAX"`
	DescriptionMaxLength int `yaml:"description_max_length" env:"TM_VALIDATION_DESCRIPTION_MAX"`
	PasswordMinLength    int `yaml:"password_min_length" env:"TM_VALIDATION_PASSWORD_MIN"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	TimeFormat  string `yaml:"time_format" env:"TM_DISPLAY_TIME_FORMAT"`
	DateFormat  string `yaml:"date_format" env:"TM_DISPLAY_DATE_FORMAT"`
	RecentLimit int    `yaml:"recent_limit" env:"TM_DISPLAY_RECENT_LIMIT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TM_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" env:"TM_APP_VERBOSE"`
}

// ServerConfig holds the HTTP API configuration
type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"TM_SERVER_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"TM_SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"TM_SERVER_WRITE_TIMEOUT"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"TM_SERVER_MAX_BODY_BYTES"`
}

// AuthConfig holds session and password hashing configuration
type AuthConfig struct {
	SessionTTL     time.Duration `yaml:"session_ttl" env:"TM_AUTH_SESSION_TTL"`
	BcryptCost     int           `yaml:"bcrypt_cost" env:"TM_AUTH_BCRYPT_COST"`
	TokenCacheSize int64         `yaml:"token_cache_size" env:"TM_AUTH_TOKEN_CACHE_SIZE"`
	TokenCacheTTL  time.Duration `yaml:"token_cache_ttl" env:"TM_AUTH_TOKEN_CACHE_TTL"`
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"TM_LOG_LEVEL"`
	Format string `yaml:"format" env:"TM_LOG_FORMAT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".tm")

	return &Config{
		Database: DatabaseConfig{
			Dir:            defaultDBDir,
			Filename:       "tm.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0o755,
		},
		Validation: ValidationConfig{
			TitleMinLength:       1,
			TitleMaxLength:       255,
			DescriptionMaxLength: 5000,
			PasswordMinLength:    8,
		},
		Display: DisplayConfig{
			TimeFormat:  "2006-01-02 15:04",
			DateFormat:  "2006-01-02",
			RecentLimit: 5,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Auth: AuthConfig{
			SessionTTL:     30 * 24 * time.Hour,
			BcryptCost:     12,
			TokenCacheSize: 10000,
			TokenCacheTTL:  5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetTokenPath returns the file holding the CLI's session token
func (c *Config) GetTokenPath() string {
	return filepath.Join(c.Database.Dir, "session")
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout returns the database write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Database.WriteTimeout
}

// LoadFromEnvironment loads configuration from environment variables.
// Unparseable values are ignored and the previous value is kept.
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	setString(&c.Database.Dir, "TM_DB_DIR")
	setString(&c.Database.Filename, "TM_DB_FILENAME")
	setDuration(&c.Database.QueryTimeout, "TM_DB_QUERY_TIMEOUT")
	setDuration(&c.Database.WriteTimeout, "TM_DB_WRITE_TIMEOUT")
	setOctal(&c.Database.DirPermissions, "TM_DB_DIR_PERMISSIONS")

	// Validation configuration
	setInt(&c.Validation.TitleMinLength, "TM_VALIDATION_TITLE_MIN")
	setInt(&c.Validation.TitleMaxLength, "TM_VALIDATION_TITLE_MAX")
	setInt(&c.Validation.DescriptionMaxLength, "TM_VALIDATION_DESCRIPTION_MAX")
	setInt(&c.Validation.PasswordMinLength, "TM_VALIDATION_PASSWORD_MIN")

	// Display configuration
	setString(&c.Display.TimeFormat, "TM_DISPLAY_TIME_FORMAT")
	setString(&c.Display.DateFormat, "TM_DISPLAY_DATE_FORMAT")
	setInt(&c.Display.RecentLimit, "TM_DISPLAY_RECENT_LIMIT")

	// Application configuration
	setDuration(&c.Application.Timeout, "TM_APP_TIMEOUT")
	setBool(&c.Application.Verbose, "TM_APP_VERBOSE")

	// Server configuration
	setString(&c.Server.Addr, "TM_SERVER_ADDR")
	setDuration(&c.Server.ReadTimeout, "TM_SERVER_READ_TIMEOUT")
	setDuration(&c.Server.WriteTimeout, "TM_SERVER_WRITE_TIMEOUT")
	setInt64(&c.Server.MaxBodyBytes, "TM_SERVER_MAX_BODY_BYTES")

	// Auth configuration
	setDuration(&c.Auth.SessionTTL, "TM_AUTH_SESSION_TTL")
	setInt(&c.Auth.BcryptCost, "TM_AUTH_BCRYPT_COST")
	setInt64(&c.Auth.TokenCacheSize, "TM_AUTH_TOKEN_CACHE_SIZE")
	setDuration(&c.Auth.TokenCacheTTL, "TM_AUTH_TOKEN_CACHE_TTL")

	// Logging configuration
	setString(&c.Logging.Level, "TM_LOG_LEVEL")
	setString(&c.Logging.Format, "TM_LOG_FORMAT")

	return nil
}

// Validate validates the configuration and returns the first error found
func (c *Config) Validate() error {
	// Database
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	// Validation
	if c.Validation.TitleMinLength < 1 {
		return &ConfigError{Field: "validation.title_min_length", Message: "title minimum length must be at least 1"}
	}
	if c.Validation.TitleMaxLength < c.Validation.TitleMinLength {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be greater than minimum length"}
	}
	if c.Validation.DescriptionMaxLength < 0 {
		return &ConfigError{Field: "validation.description_max_length", Message: "description maximum length cannot be negative"}
	}
	if c.Validation.PasswordMinLength < 1 || c.Validation.PasswordMinLength > 72 {
		return &ConfigError{Field: "validation.password_min_length", Message: "password minimum length must be between 1 and 72"}
	}

	// Display
	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}
	if c.Display.DateFormat == "" {
		return &ConfigError{Field: "display.date_format", Message: "date format cannot be empty"}
	}
	if c.Display.RecentLimit < 1 {
		return &ConfigError{Field: "display.recent_limit", Message: "recent limit must be at least 1"}
	}

	// Application
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	// Server
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "server address cannot be empty"}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return &ConfigError{Field: "server.max_body_bytes", Message: "max body size must be positive"}
	}

	// Auth
	if c.Auth.SessionTTL <= 0 {
		return &ConfigError{Field: "auth.session_ttl", Message: "session TTL must be positive"}
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return &ConfigError{Field: "auth.bcrypt_cost", Message: "bcrypt cost must be between 4 and 31"}
	}
	if c.Auth.TokenCacheSize < 0 {
		return &ConfigError{Field: "auth.token_cache_size", Message: "token cache size cannot be negative"}
	}

	// Logging
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "log format must be text or json"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "log level must be debug, info, warn or error"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
