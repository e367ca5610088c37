package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3001", cfg.Server.PublicURL)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file:invoices.db", cfg.Database.DSN)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Groq.Model)
	assert.Equal(t, 2*time.Minute, cfg.Groq.Timeout)
	assert.False(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_URL", "postgres://u:p@localhost:5432/invoices")
	t.Setenv("DB_DIAL_TIMEOUT", "7s")
	t.Setenv("GEMINI_API_KEY", " gem-key ")
	t.Setenv("NODE_ENV", "production")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/invoices", cfg.Database.DSN)
	assert.Equal(t, 7*time.Second, cfg.Database.DialTimeout)
	assert.Equal(t, "gem-key", cfg.Gemini.APIKey)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.App.LogFormat)
}

func TestLoadConfig_GroqAlternateKey(t *testing.T) {
	t.Run("alternate name is used when primary is unset", func(t *testing.T) {
		t.Setenv("GROK_API_KEY", "alt")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "alt", cfg.Groq.APIKey)
	})

	t.Run("primary name wins", func(t *testing.T) {
		t.Setenv("GROQ_API_KEY", "primary")
		t.Setenv("GROK_API_KEY", "alt")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "primary", cfg.Groq.APIKey)
	})
}

func TestLoadConfig_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
server:
  port: 5000
database:
  driver: sqlite
  dsn: "file:from-yaml.db"
groq:
  model: custom-model
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))
	t.Setenv("PORT", "5001")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "file:from-yaml.db", cfg.Database.DSN)
	assert.Equal(t, "custom-model", cfg.Groq.Model)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("INVOICES_DOTENV_PROBE=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("INVOICES_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("INVOICES_DOTENV_PROBE"))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }, "DB_DRIVER"},
		{"missing dsn", func(c *Config) { c.Database.Driver = DriverPostgres; c.Database.DSN = "" }, "DB_URL"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
