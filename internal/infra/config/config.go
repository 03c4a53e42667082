package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Postgres     PostgresConfig     `yaml:"postgres"`
	Cache        CacheConfig        `yaml:"cache"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	Auth         AuthConfig         `yaml:"auth"`
	Subscription SubscriptionConfig `yaml:"subscription"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// PostgresConfig contains DSN and pooling settings. An empty DSN selects the
// in-memory repositories.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Driver     string        `yaml:"driver"`
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	Codec      string        `yaml:"codec"`
	CatalogTTL time.Duration `yaml:"catalogTtl"`
	ProfileTTL time.Duration `yaml:"profileTtl"`
	OpTimeout  time.Duration `yaml:"opTimeout"`
}

// CatalogConfig holds paging limits and the service identity sent upstream.
type CatalogConfig struct {
	DefaultPageSize int    `yaml:"defaultPageSize"`
	MaxPageSize     int    `yaml:"maxPageSize"`
	ServiceName     string `yaml:"serviceName"`
}

// AuthConfig points at the identity service.
type AuthConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	Timeout     time.Duration `yaml:"timeout"`
	AdminEmails []string      `yaml:"adminEmails"`
}

// SubscriptionConfig points at the subscription service.
type SubscriptionConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig mirrors the gobreaker settings we expose.
type BreakerConfig struct {
	MaxRequests      uint32        `yaml:"maxRequests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	MinRequests      uint32        `yaml:"minRequests"`
	FailureThreshold float64       `yaml:"failureThreshold"`
}

// Cache drivers.
const (
	CacheDriverValkey = "valkey"
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("CACHE_DRIVER"); v != "" {
		cfg.Cache.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("CACHE_CODEC"); v != "" {
		cfg.Cache.Codec = v
	}
	if v := os.Getenv("CACHE_CATALOG_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.CatalogTTL = parsed
		}
	}
	if v := os.Getenv("CACHE_PROFILE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.ProfileTTL = parsed
		}
	}
	if v := os.Getenv("CATALOG_MAX_PAGE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.MaxPageSize = parsed
		}
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.Catalog.ServiceName = v
	}
	if v := os.Getenv("AUTH_BASE_URL"); v != "" {
		cfg.Auth.BaseURL = v
	}
	if v := os.Getenv("AUTH_ADMIN_EMAILS"); v != "" {
		cfg.Auth.AdminEmails = splitList(v)
	}
	if v := os.Getenv("SUBSCRIPTION_BASE_URL"); v != "" {
		cfg.Subscription.BaseURL = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			CORSOrigins:  []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude:     []string{"/metrics"},
			},
		},
		Postgres: PostgresConfig{
			MaxConns: 8,
			MinConns: 0,
		},
		Cache: CacheConfig{
			Driver:     CacheDriverMemory,
			Codec:      "json",
			CatalogTTL: 24 * time.Hour,
			ProfileTTL: 5 * time.Minute,
			OpTimeout:  500 * time.Millisecond,
		},
		Catalog: CatalogConfig{
			DefaultPageSize: 1,
			MaxPageSize:     50,
			ServiceName:     "cortex",
		},
		Auth: AuthConfig{
			BaseURL: "http://localhost:4000",
			Timeout: 10 * time.Second,
		},
		Subscription: SubscriptionConfig{
			BaseURL: "http://localhost:4001",
			Timeout: 5 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				MinRequests:      5,
				FailureThreshold: 0.6,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	switch c.Cache.Driver {
	case CacheDriverMemory:
	case CacheDriverValkey, CacheDriverRedis:
		if strings.TrimSpace(c.Cache.Addr) == "" {
			return fmt.Errorf("cache.addr cannot be empty when cache.driver is %s", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver %q is not supported", c.Cache.Driver)
	}
	if c.Cache.Codec != "json" && c.Cache.Codec != "msgpack" {
		return fmt.Errorf("cache.codec %q is not supported", c.Cache.Codec)
	}
	if c.Cache.CatalogTTL <= 0 || c.Cache.ProfileTTL <= 0 {
		return errors.New("cache ttls must be positive")
	}
	if c.Catalog.DefaultPageSize <= 0 {
		return errors.New("catalog.defaultPageSize must be positive")
	}
	if c.Catalog.MaxPageSize < c.Catalog.DefaultPageSize {
		return errors.New("catalog.maxPageSize cannot be below catalog.defaultPageSize")
	}
	if strings.TrimSpace(c.Catalog.ServiceName) == "" {
		return errors.New("catalog.serviceName cannot be empty")
	}
	if strings.TrimSpace(c.Auth.BaseURL) == "" {
		return errors.New("auth.baseUrl cannot be empty")
	}
	if strings.TrimSpace(c.Subscription.BaseURL) == "" {
		return errors.New("subscription.baseUrl cannot be empty")
	}
	if t := c.Subscription.Breaker.FailureThreshold; t <= 0 || t > 1 {
		return errors.New("subscription.breaker.failureThreshold must be in (0, 1]")
	}
	return nil
}
