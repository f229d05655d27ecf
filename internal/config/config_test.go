package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "tm.db", cfg.Database.Filename)
	assert.Equal(t, ".tm", filepath.Base(cfg.Database.Dir))
	assert.Equal(t, 10*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, uint32(0o755), cfg.Database.DirPermissions)
	assert.Equal(t, 255, cfg.Validation.TitleMaxLength)
	assert.Equal(t, 5, cfg.Display.RecentLimit)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Paths(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Dir = "/data"

	assert.Equal(t, filepath.Join("/data", "tm.db"), cfg.GetDatabasePath())
	assert.Equal(t, filepath.Join("/data", "session"), cfg.GetTokenPath())
}

func TestConfig_LoadFromEnvironment(t *testing.T) {
	t.Setenv("TM_DB_DIR", "/tmp/tm-env")
	t.Setenv("TM_DB_QUERY_TIMEOUT", "3s")
	t.Setenv("TM_DB_DIR_PERMISSIONS", "700")
	t.Setenv("TM_VALIDATION_TITLE_MAX", "80")
	t.Setenv("TM_DISPLAY_RECENT_LIMIT", "10")
	t.Setenv("TM_APP_VERBOSE", "true")
	t.Setenv("TM_SERVER_ADDR", ":9999")
	t.Setenv("TM_SERVER_MAX_BODY_BYTES", "2048")
	t.Setenv("TM_AUTH_SESSION_TTL", "1h")
	t.Setenv("TM_LOG_FORMAT", "json")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, "/tmp/tm-env", cfg.Database.Dir)
	assert.Equal(t, 3*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, uint32(0o700), cfg.Database.DirPermissions)
	assert.Equal(t, 80, cfg.Validation.TitleMaxLength)
	assert.Equal(t, 10, cfg.Display.RecentLimit)
	assert.True(t, cfg.Application.Verbose)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, int64(2048), cfg.Server.MaxBodyBytes)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestConfig_LoadFromEnvironment_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("TM_DB_QUERY_TIMEOUT", "soon")
	t.Setenv("TM_DISPLAY_RECENT_LIMIT", "many")
	t.Setenv("TM_APP_VERBOSE", "perhaps")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, 10*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 5, cfg.Display.RecentLimit)
	assert.False(t, cfg.Application.Verbose)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "empty dir", mutate: func(c *Config) { c.Database.Dir = "" }, field: "database.dir"},
		{name: "empty filename", mutate: func(c *Config) { c.Database.Filename = "" }, field: "database.filename"},
		{name: "zero query timeout", mutate: func(c *Config) { c.Database.QueryTimeout = 0 }, field: "database.query_timeout"},
		{name: "negative write timeout", mutate: func(c *Config) { c.Database.WriteTimeout = -time.Second }, field: "database.write_timeout"},
		{name: "title min zero", mutate: func(c *Config) { c.Validation.TitleMinLength = 0 }, field: "validation.title_min_length"},
		{name: "title max below min", mutate: func(c *Config) { c.Validation.TitleMaxLength = 0 }, field: "validation.title_max_length"},
		{name: "password min too long", mutate: func(c *Config) { c.Validation.PasswordMinLength = 100 }, field: "validation.password_min_length"},
		{name: "empty date format", mutate: func(c *Config) { c.Display.DateFormat = "" }, field: "display.date_format"},
		{name: "zero recent limit", mutate: func(c *Config) { c.Display.RecentLimit = 0 }, field: "display.recent_limit"},
		{name: "zero app timeout", mutate: func(c *Config) { c.Application.Timeout = 0 }, field: "application.timeout"},
		{name: "empty server addr", mutate: func(c *Config) { c.Server.Addr = "" }, field: "server.addr"},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.Auth.BcryptCost = 2 }, field: "auth.bcrypt_cost"},
		{name: "unknown log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, field: "logging.format"},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, field: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var configErr *ConfigError
			require.True(t, errors.As(err, &configErr))
			assert.Equal(t, tt.field, configErr.Field)
			assert.Contains(t, err.Error(), tt.field+": ")
		})
	}
}
