package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	envPrefix = "TRADEBOOK_"
)

type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Telegram TelegramConfig `yaml:"telegram"`
	Web      WebConfig      `yaml:"web"`
	Logging  LoggingConfig  `yaml:"logging"`
	Export   ExportConfig   `yaml:"export"`
	Account  AccountConfig  `yaml:"account"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn,omitempty"`
}

// AIConfig never holds the key itself, only the name of the variable that
// may carry a fallback key.
type AIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	APIKeyEnv      string `yaml:"api_key_env"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token,omitempty"`
	ChatID   int64  `yaml:"chat_id,omitempty"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ExportConfig struct {
	DateLayout string `yaml:"date_layout"`
}

// AccountConfig seeds the settings record the first time a store is used.
type AccountConfig struct {
	InitialBalance float64 `yaml:"initial_balance"`
}

// Load reads .env, then the YAML file at path (skipped when path is empty),
// then TRADEBOOK_* overrides, then fills defaults and validates.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverSQLite
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "tradebook.db"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "deepseek-chat"
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.AI.APIKeyEnv == "" {
		cfg.AI.APIKeyEnv = envPrefix + "AI_KEY"
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 10
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 3
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = 28
	}
	if cfg.Export.DateLayout == "" {
		cfg.Export.DateLayout = "1/2/2006"
	}
	if cfg.Account.InitialBalance == 0 {
		cfg.Account.InitialBalance = 10000
	}
}

func applyEnv(cfg *Config) {
	cfg.Storage.Driver = envStr("DB_DRIVER", cfg.Storage.Driver)
	cfg.Storage.Path = envStr("DB_PATH", cfg.Storage.Path)
	cfg.Storage.DSN = envStr("DATABASE_URL", cfg.Storage.DSN)
	cfg.Telegram.Enabled = envBool("TELEGRAM_ENABLED", cfg.Telegram.Enabled)
	cfg.Telegram.BotToken = envStr("TELEGRAM_TOKEN", cfg.Telegram.BotToken)
	cfg.Telegram.ChatID = envInt64("TELEGRAM_CHAT_ID", cfg.Telegram.ChatID)
	cfg.Web.Port = int(envInt64("PORT", int64(cfg.Web.Port)))
	cfg.Logging.Level = envStr("LOG_LEVEL", cfg.Logging.Level)
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Storage.Driver)
	}
	if c.AI.TimeoutSeconds < 0 {
		return fmt.Errorf("ai.timeout_seconds must not be negative")
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port %d out of range", c.Web.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error")
	}
	if c.Account.InitialBalance < 0 {
		return fmt.Errorf("account.initial_balance must not be negative")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// FallbackAIKey is the key from the configured environment variable, used
// when a request does not bring its own.
func (c *Config) FallbackAIKey() string {
	if c.AI.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.AI.APIKeyEnv))
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Web.Port)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}
