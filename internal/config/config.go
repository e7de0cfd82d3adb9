package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr         string        `yaml:"listen_addr"`
	GinMode            string        `yaml:"gin_mode"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the gorm dialector. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	LogLevel string `yaml:"log_level"`
}

// AuthConfig configures bearer tokens.
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	JWTIssuer   string        `yaml:"jwt_issuer"`
	JWTAudience string        `yaml:"jwt_audience"`
	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
}

// RateLimitConfig configures the request throttles. Rates are "N/unit".
type RateLimitConfig struct {
	Backend       string            `yaml:"backend"`
	RedisAddr     string            `yaml:"redis_addr"`
	RedisPassword string            `yaml:"redis_password"`
	RedisDB       int               `yaml:"redis_db"`
	KeyPrefix     string            `yaml:"key_prefix"`
	Rates         map[string]string `yaml:"rates"`
}

// LogConfig configures the slog handler. Format is "text" or "json".
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const devSecret = "development-insecure-secret-change-me"

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:         ":8008",
			GinMode:            "release",
			ShutdownTimeoutRaw: "5s",
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			DSN:      "tasks-tracker.db",
			LogLevel: "warn",
		},
		Auth: AuthConfig{
			JWTSecret:   devSecret,
			JWTIssuer:   "task-tracker-api",
			JWTAudience: "task-tracker-clients",
			TokenTTLRaw: "24h",
		},
		RateLimit: RateLimitConfig{
			Backend:   "memory",
			KeyPrefix: "throttle:",
			Rates: map[string]string{
				"login":       "5/m",
				"task_create": "30/m",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) applyEnv() error {
	c.Server.ListenAddr = EnvOrDefault("TASKS_ADDR", c.Server.ListenAddr)
	c.Server.GinMode = EnvOrDefault("GIN_MODE", c.Server.GinMode)
	c.Database.Driver = EnvOrDefault("TASKS_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = EnvOrDefault("TASKS_DB_DSN", c.Database.DSN)
	c.Database.LogLevel = EnvOrDefault("TASKS_DB_LOG_LEVEL", c.Database.LogLevel)
	c.Auth.JWTSecret = EnvOrDefault("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.JWTIssuer = EnvOrDefault("JWT_ISSUER", c.Auth.JWTIssuer)
	c.Auth.JWTAudience = EnvOrDefault("JWT_AUDIENCE", c.Auth.JWTAudience)
	c.Auth.TokenTTLRaw = EnvOrDefault("JWT_TTL", c.Auth.TokenTTLRaw)
	c.RateLimit.Backend = EnvOrDefault("TASKS_RATE_LIMIT_BACKEND", c.RateLimit.Backend)
	c.RateLimit.RedisAddr = EnvOrDefault("REDIS_ADDR", c.RateLimit.RedisAddr)
	c.RateLimit.RedisPassword = EnvOrDefault("REDIS_PASSWORD", c.RateLimit.RedisPassword)
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: REDIS_DB: %w", err)
		}
		c.RateLimit.RedisDB = n
	}
	if c.RateLimit.Rates == nil {
		c.RateLimit.Rates = map[string]string{}
	}
	if v := os.Getenv("TASKS_THROTTLE_LOGIN"); v != "" {
		c.RateLimit.Rates["login"] = v
	}
	if v := os.Getenv("TASKS_THROTTLE_TASK_CREATE"); v != "" {
		c.RateLimit.Rates["task_create"] = v
	}
	c.Log.Level = EnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = EnvOrDefault("LOG_FORMAT", c.Log.Format)
	return nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	d, err := parseDurationAllowEmpty(c.Server.ShutdownTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if d == 0 {
		d = 5 * time.Second
	}
	c.Server.ShutdownTimeout = d

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("config: database.dsn must be set")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must be set")
	}
	ttl, err := parseDurationAllowEmpty(c.Auth.TokenTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.token_ttl: %w", err)
	}
	c.Auth.TokenTTL = ttl

	switch c.RateLimit.Backend {
	case "memory":
	case "redis":
		if c.RateLimit.RedisAddr == "" {
			return fmt.Errorf("config: rate_limit.redis_addr must be set for the redis backend")
		}
	default:
		return fmt.Errorf("config: rate_limit.backend must be memory or redis, got %q", c.RateLimit.Backend)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// InsecureSecret reports whether the built-in development secret is in use.
func (c *Config) InsecureSecret() bool {
	return c.Auth.JWTSecret == devSecret
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}
