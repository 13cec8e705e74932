package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds application configuration
type Config struct {
	Port      string `toml:"port"`
	DBConn    string `toml:"db_conn"`
	LogLevel  string `toml:"log_level"`
	JWTSecret string `toml:"jwt_secret"`

	GeminiAPIKey     string        `toml:"gemini_api_key"`
	GeminiModel      string        `toml:"gemini_model"`
	NarrativeTimeout time.Duration `toml:"narrative_timeout"`
	RemoteTimeout    time.Duration `toml:"remote_timeout"`

	CacheBackend   string        `toml:"cache_backend"` // sqlite, redis or memory
	CachePath      string        `toml:"cache_path"`
	RedisAddr      string        `toml:"redis_addr"`
	CacheKey       string        `toml:"cache_key"` // hex, enables sealing when set
	CacheRetention time.Duration `toml:"cache_retention"`

	SMTPHost     string `toml:"smtp_host"`
	SMTPPort     string `toml:"smtp_port"`
	SMTPUsername string `toml:"smtp_username"`
	SMTPPassword string `toml:"smtp_password"`
	SenderEmail  string `toml:"sender_email"`

	DigestSchedule string `toml:"digest_schedule"`
	PruneSchedule  string `toml:"prune_schedule"`
}

// defaults returns the configuration used when neither file nor env set a value
func defaults() *Config {
	return &Config{
		Port:             "8080",
		DBConn:           "host=localhost port=5436 user=test password=test dbname=bridge sslmode=disable",
		LogLevel:         "INFO",
		GeminiModel:      "gemini-2.5-flash",
		NarrativeTimeout: 20 * time.Second,
		RemoteTimeout:    10 * time.Second,
		CacheBackend:     "sqlite",
		CachePath:        "data/bridge-cache.db",
		RedisAddr:        "localhost:6379",
		CacheRetention:   90 * 24 * time.Hour,
		SMTPPort:         "587",
		SenderEmail:      "plans@salary-bridge.local",
		DigestSchedule:   "0 9 * * MON",
		PruneSchedule:    "@daily",
	}
}

// NewConfig loads configuration from the optional TOML file named by
// CONFIG_FILE, then applies environment variables on top
func NewConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBConn = getEnv("DB_CONN", cfg.DBConn)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.CacheBackend = getEnv("CACHE_BACKEND", cfg.CacheBackend)
	cfg.CachePath = getEnv("CACHE_PATH", cfg.CachePath)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.CacheKey = getEnv("CACHE_KEY", cfg.CacheKey)
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnv("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SenderEmail = getEnv("SENDER_EMAIL", cfg.SenderEmail)
	cfg.DigestSchedule = getEnv("DIGEST_SCHEDULE", cfg.DigestSchedule)
	cfg.PruneSchedule = getEnv("PRUNE_SCHEDULE", cfg.PruneSchedule)

	var err error
	if cfg.NarrativeTimeout, err = getEnvDuration("NARRATIVE_TIMEOUT", cfg.NarrativeTimeout); err != nil {
		return nil, err
	}
	if cfg.RemoteTimeout, err = getEnvDuration("REMOTE_TIMEOUT", cfg.RemoteTimeout); err != nil {
		return nil, err
	}
	if cfg.CacheRetention, err = getEnvDuration("CACHE_RETENTION", cfg.CacheRetention); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.CacheBackend {
	case "sqlite", "redis", "memory":
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
	if _, err := cfg.CacheKeyBytes(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CacheKeyBytes decodes CacheKey. It returns nil when sealing is disabled.
func (c *Config) CacheKeyBytes() ([]byte, error) {
	if c.CacheKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.CacheKey)
	if err != nil {
		return nil, fmt.Errorf("CACHE_KEY must be hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("CACHE_KEY must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// MailEnabled reports whether SMTP settings are present
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvDuration accepts Go duration strings or plain seconds
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
