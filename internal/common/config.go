package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvProduction = "production"

	maxConfigFileSize = 1 << 20
)

// Config holds all application configuration
type Config struct {
	App      AppConfig      `koanf:"app"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Gemini   ProviderConfig `koanf:"gemini"`
	Groq     ProviderConfig `koanf:"groq"`
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Env       string `koanf:"env"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int           `koanf:"port"`
	PublicURL       string        `koanf:"public_url"`
	GRPCHealthAddr  string        `koanf:"grpc_health_addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `koanf:"driver"`
	DSN              string        `koanf:"dsn"`
	MaxConns         int32         `koanf:"max_conns"`
	MinConns         int32         `koanf:"min_conns"`
	MaxConnLifetime  time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `koanf:"max_conn_idle_time"`
	DialTimeout      time.Duration `koanf:"dial_timeout"`
	StatementTimeout time.Duration `koanf:"statement_timeout"`
}

// ProviderConfig holds the settings of one extraction provider
type ProviderConfig struct {
	APIKey    string        `koanf:"api_key"`
	APIKeyAlt string        `koanf:"api_key_alt"`
	BaseURL   string        `koanf:"base_url"`
	Model     string        `koanf:"model"`
	Timeout   time.Duration `koanf:"timeout"`
}

// envKeys maps recognised environment variables onto config paths.
var envKeys = map[string]string{
	"APP_ENV":               "app.env",
	"NODE_ENV":              "app.node_env",
	"LOG_LEVEL":             "app.log_level",
	"LOG_FORMAT":            "app.log_format",
	"PORT":                  "server.port",
	"API_BASE_URL":          "server.public_url",
	"GRPC_HEALTH_ADDR":      "server.grpc_health_addr",
	"SHUTDOWN_TIMEOUT":      "server.shutdown_timeout",
	"DB_DRIVER":             "database.driver",
	"DB_URL":                "database.dsn",
	"DB_MAX_CONNS":          "database.max_conns",
	"DB_MIN_CONNS":          "database.min_conns",
	"DB_MAX_CONN_LIFETIME":  "database.max_conn_lifetime",
	"DB_MAX_CONN_IDLE_TIME": "database.max_conn_idle_time",
	"DB_DIAL_TIMEOUT":       "database.dial_timeout",
	"DB_STATEMENT_TIMEOUT":  "database.statement_timeout",
	"GEMINI_API_KEY":        "gemini.api_key",
	"GEMINI_BASE_URL":       "gemini.base_url",
	"GEMINI_MODEL":          "gemini.model",
	"GEMINI_TIMEOUT":        "gemini.timeout",
	"GROQ_API_KEY":          "groq.api_key",
	"GROK_API_KEY":          "groq.api_key_alt",
	"GROQ_BASE_URL":         "groq.base_url",
	"GROQ_MODEL":            "groq.model",
	"GROQ_TIMEOUT":          "groq.timeout",
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from an optional YAML file, then environment
// variables, then fills in defaults.
func LoadConfig(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		info, err := os.Stat(configPath)
		if err != nil {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", configPath, maxConfigFileSize)
		}
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.App.Env == "" {
		cfg.App.Env = k.String("app.node_env")
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.App.Env = strings.ToLower(strings.TrimSpace(cfg.App.Env))
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.LogFormat == "" {
		if cfg.IsProduction() {
			cfg.App.LogFormat = "json"
		} else {
			cfg.App.LogFormat = "console"
		}
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost:" + strconv.Itoa(cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == DriverSQLite {
		cfg.Database.DSN = "file:invoices.db"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.MaxConnLifetime == 0 {
		cfg.Database.MaxConnLifetime = 30 * time.Minute
	}
	if cfg.Database.MaxConnIdleTime == 0 {
		cfg.Database.MaxConnIdleTime = 5 * time.Minute
	}
	if cfg.Database.DialTimeout == 0 {
		cfg.Database.DialTimeout = 3 * time.Second
	}

	cfg.Gemini.APIKey = strings.TrimSpace(cfg.Gemini.APIKey)
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-1.5-flash"
	}
	if cfg.Gemini.Timeout <= 0 {
		cfg.Gemini.Timeout = 2 * time.Minute
	}

	cfg.Groq.APIKey = strings.TrimSpace(cfg.Groq.APIKey)
	if cfg.Groq.APIKey == "" {
		cfg.Groq.APIKey = strings.TrimSpace(cfg.Groq.APIKeyAlt)
	}
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = "llama-3.3-70b-versatile"
	}
	if cfg.Groq.Timeout <= 0 {
		cfg.Groq.Timeout = 2 * time.Minute
	}
}

// IsProduction reports whether error details should be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("DB_DRIVER must be %q or %q", DriverPostgres, DriverSQLite), ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return NewAppError(CodeConfig, "PORT must be between 1 and 65535", ErrInvalidInput)
	}
	return nil
}
