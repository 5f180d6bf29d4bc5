package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 5000
	defaultEnv        = "development"

	defaultDBHost    = "127.0.0.1"
	defaultDBPort    = 3306
	defaultDBUser    = "root"
	defaultDBName    = "portfolio"
	defaultDBCharset = "utf8mb4"
	defaultDBLoc     = "Local"

	defaultRedisPort = 6379

	defaultSessionTTL       = 7 * 24 * time.Hour
	defaultTelegramTimeout  = 10 * time.Second
	defaultContactRateLimit = 5
)

const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Environment variables that override secrets from the file.
const (
	EnvJWTSecret      = "PORTFOLIO_JWT_SECRET"
	EnvTelegramToken  = "PORTFOLIO_TELEGRAM_TOKEN"
	EnvTelegramChatID = "PORTFOLIO_TELEGRAM_CHAT_ID"
	EnvAdminPassword  = "PORTFOLIO_ADMIN_PASSWORD"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	LogDir         string                `yaml:"log_dir"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	Store          StoreConfig           `yaml:"store"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Session        SessionConfig         `yaml:"session"`
	Telegram       TelegramConfig        `yaml:"telegram"`
	Admin          AdminConfig           `yaml:"admin"`
	// ContactRateLimit is the number of contact submissions allowed per client IP per minute.
	ContactRateLimit int `yaml:"contact_rate_limit"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // memory | mysql
}

type DatabaseRuntimeConfig struct {
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

// RedisRuntimeConfig is optional; Redis is used only when url or host is set.
type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
}

type SessionConfig struct {
	Backend string        `yaml:"backend"` // memory | redis
	TTL     time.Duration `yaml:"ttl"`
}

type TelegramConfig struct {
	BotToken string        `yaml:"bot_token"`
	ChatID   string        `yaml:"chat_id"`
	APIBase  string        `yaml:"api_base"`
	Timeout  time.Duration `yaml:"timeout"`
}

// AdminConfig seeds the admin account on startup when it does not exist.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Load reads the YAML file at configPath, applies defaults, environment
// overrides and validation.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content. getenv supplies the secret overrides; pass nil to skip them.
func Parse(content []byte, getenv func(string) string) (*AppConfig, error) {
	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if getenv != nil {
		applyEnv(&cfg, getenv)
	}
	normalize(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:  defaultPort,
		Env:   defaultEnv,
		Store: StoreConfig{Driver: StoreMemory},
		Database: DatabaseRuntimeConfig{
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis:            RedisRuntimeConfig{Port: defaultRedisPort},
		Session:          SessionConfig{Backend: SessionMemory, TTL: defaultSessionTTL},
		Telegram:         TelegramConfig{Timeout: defaultTelegramTimeout},
		ContactRateLimit: defaultContactRateLimit,
	}
}

func applyEnv(cfg *AppConfig, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvJWTSecret)); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(getenv(EnvTelegramToken)); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := strings.TrimSpace(getenv(EnvTelegramChatID)); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := getenv(EnvAdminPassword); v != "" {
		cfg.Admin.Password = v
	}
}

func normalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreMemory
	}
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = SessionMemory
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = defaultSessionTTL
	}
	cfg.Telegram.BotToken = strings.TrimSpace(cfg.Telegram.BotToken)
	cfg.Telegram.ChatID = strings.TrimSpace(cfg.Telegram.ChatID)
	cfg.Telegram.APIBase = strings.TrimRight(strings.TrimSpace(cfg.Telegram.APIBase), "/")
	if cfg.Telegram.Timeout <= 0 {
		cfg.Telegram.Timeout = defaultTelegramTimeout
	}
	cfg.Admin.Username = strings.TrimSpace(cfg.Admin.Username)
	cfg.Redis.URL = strings.TrimSpace(cfg.Redis.URL)
	cfg.Redis.Host = strings.TrimSpace(cfg.Redis.Host)
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required (or set %s)", EnvJWTSecret)
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreMySQL:
		if c.Database.DSN == "" && (c.Database.Port < 1 || c.Database.Port > 65535) {
			return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
		}
	default:
		return fmt.Errorf("invalid store.driver %q, expected %s or %s", c.Store.Driver, StoreMemory, StoreMySQL)
	}
	switch c.Session.Backend {
	case SessionMemory:
	case SessionRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("session.backend %q requires redis.url or redis.host", SessionRedis)
		}
	default:
		return fmt.Errorf("invalid session.backend %q, expected %s or %s", c.Session.Backend, SessionMemory, SessionRedis)
	}
	if c.Redis.Enabled() && c.Redis.URL == "" && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.ContactRateLimit < 0 {
		return fmt.Errorf("invalid contact_rate_limit %d, expected >= 0", c.ContactRateLimit)
	}
	return nil
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// Enabled reports whether a Redis server is configured.
func (c RedisRuntimeConfig) Enabled() bool {
	return c.URL != "" || c.Host != ""
}
