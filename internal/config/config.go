// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // development, staging, production
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`

	// SyncTimeout is the inline processing budget for interactive requests.
	// Playlists that cannot be processed within it are queued instead.
	SyncTimeout time.Duration `mapstructure:"sync_timeout"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`

	// StatsTTL is the staleness window for stored playlist statistics.
	StatsTTL time.Duration `mapstructure:"stats_ttl"`
}

// BackendConfig holds metadata backend settings.
type BackendConfig struct {
	// Primary selects the backend by name: "dataapi" or "scraper".
	Primary string `mapstructure:"primary"`

	// EnableFallback lets quota and throttling failures on the primary
	// backend fall through to the other one.
	EnableFallback bool `mapstructure:"enable_fallback"`

	// MaxVideos caps how many videos one fetch retrieves. Zero means all.
	MaxVideos int `mapstructure:"max_videos"`

	API     APIBackendConfig     `mapstructure:"api"`
	Scraper ScraperBackendConfig `mapstructure:"scraper"`
}

// APIBackendConfig holds the official Data API backend settings.
type APIBackendConfig struct {
	BaseURL  string         `mapstructure:"base_url"`
	Key      string         `mapstructure:"key"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	Retry    RetryConfig    `mapstructure:"retry"`
	CB       CBConfig       `mapstructure:"circuit_breaker"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
}

// ScraperBackendConfig holds the unofficial extractor backend settings.
type ScraperBackendConfig struct {
	BaseURL string `mapstructure:"base_url"`

	// Cookies is raw Netscape-format cookie text, typically injected via
	// APP_BACKEND_SCRAPER_COOKIES from secret storage.
	Cookies string `mapstructure:"cookies"`

	Timeout  time.Duration  `mapstructure:"timeout"`
	Retry    RetryConfig    `mapstructure:"retry"`
	CB       CBConfig       `mapstructure:"circuit_breaker"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// ThrottleConfig holds client-side upstream rate limiting settings.
type ThrottleConfig struct {
	RequestsPerSec float64 `mapstructure:"requests_per_sec"`
	Burst          int     `mapstructure:"burst"`
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxRuntime   time.Duration `mapstructure:"max_runtime"`
	MaxAttempts  int           `mapstructure:"max_attempts"`

	// JobTimeout bounds one job's pipeline run.
	JobTimeout time.Duration `mapstructure:"job_timeout"`

	// UseLock serializes whole worker invocations across instances via the
	// distributed locker. Per-job exclusivity comes from the store's atomic
	// claim regardless.
	UseLock bool `mapstructure:"use_lock"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds stats caching settings.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	StatsTTL  time.Duration `mapstructure:"stats_ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Addr returns the Redis address in host:port form.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "viralvibes")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.sync_timeout", "15s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "viralvibes")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.stats_ttl", "24h")

	// Backend defaults
	v.SetDefault("backend.primary", "dataapi")
	v.SetDefault("backend.enable_fallback", true)
	v.SetDefault("backend.max_videos", 0)

	v.SetDefault("backend.api.base_url", "https://www.googleapis.com")
	v.SetDefault("backend.api.key", "")
	v.SetDefault("backend.api.timeout", "15s")
	v.SetDefault("backend.api.retry.max_attempts", 3)
	v.SetDefault("backend.api.retry.wait_time", "1s")
	v.SetDefault("backend.api.retry.max_wait_time", "5s")
	v.SetDefault("backend.api.circuit_breaker.max_requests", 3)
	v.SetDefault("backend.api.circuit_breaker.interval", "60s")
	v.SetDefault("backend.api.circuit_breaker.timeout", "30s")
	v.SetDefault("backend.api.circuit_breaker.failure_ratio", 0.5)
	v.SetDefault("backend.api.throttle.requests_per_sec", 8)
	v.SetDefault("backend.api.throttle.burst", 4)

	v.SetDefault("backend.scraper.base_url", "http://localhost:8090")
	v.SetDefault("backend.scraper.cookies", "")
	v.SetDefault("backend.scraper.timeout", "60s")
	v.SetDefault("backend.scraper.retry.max_attempts", 3)
	v.SetDefault("backend.scraper.retry.wait_time", "2s")
	v.SetDefault("backend.scraper.retry.max_wait_time", "10s")
	v.SetDefault("backend.scraper.circuit_breaker.max_requests", 3)
	v.SetDefault("backend.scraper.circuit_breaker.interval", "60s")
	v.SetDefault("backend.scraper.circuit_breaker.timeout", "30s")
	v.SetDefault("backend.scraper.circuit_breaker.failure_ratio", 0.5)
	v.SetDefault("backend.scraper.throttle.requests_per_sec", 1)
	v.SetDefault("backend.scraper.throttle.burst", 1)

	// Worker defaults
	v.SetDefault("worker.poll_interval", "10s")
	v.SetDefault("worker.batch_size", 3)
	v.SetDefault("worker.max_runtime", "5h")
	v.SetDefault("worker.max_attempts", 3)
	v.SetDefault("worker.job_timeout", "10m")
	v.SetDefault("worker.use_lock", false)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.stats_ttl", "15m")
	v.SetDefault("cache.key_prefix", "viralvibes")
}
