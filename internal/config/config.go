package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8000"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"storefront"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"20"`
	RunMigrations    bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"storefront-cache-invalidation"`

	// Product service
	ProductServiceURL     string        `env:"PRODUCT_SERVICE_URL" envDefault:"http://localhost:8001"`
	ProductServiceTimeout time.Duration `env:"PRODUCT_SERVICE_TIMEOUT" envDefault:"5s"`
	BreakerTimeout        time.Duration `env:"PRODUCT_SERVICE_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerFailureRatio   float64       `env:"PRODUCT_SERVICE_BREAKER_FAILURE_RATIO" envDefault:"0.6"`

	// Customer tokens
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me-in-production"`

	// Sales channel context
	ContextTTL            time.Duration `env:"CONTEXT_TTL" envDefault:"72h"`
	DomainRefreshInterval time.Duration `env:"DOMAIN_REFRESH_INTERVAL" envDefault:"1m"`

	// HTTP cache
	HTTPCacheEnabled bool          `env:"HTTP_CACHE_ENABLED" envDefault:"true"`
	HTTPCacheTTL     time.Duration `env:"HTTP_CACHE_TTL" envDefault:"2h"`
	SystemConfigTTL  time.Duration `env:"SYSTEM_CONFIG_TTL" envDefault:"1h"`
	BrowserMaxAge    int           `env:"BROWSER_CACHE_MAX_AGE" envDefault:"0"`

	// Review submissions per second and burst, per customer or client IP.
	ReviewRateLimit float64 `env:"REVIEW_RATE_LIMIT" envDefault:"0.2"`
	ReviewRateBurst int     `env:"REVIEW_RATE_BURST" envDefault:"3"`

	// Observability
	OTELEnabled    bool          `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64       `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
	PprofCIDRs     []string      `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
	SlowQuery      time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.ProductServiceURL == "" {
		return fmt.Errorf("PRODUCT_SERVICE_URL is required")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		return fmt.Errorf("PRODUCT_SERVICE_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.BreakerFailureRatio)
	}
	if c.ContextTTL <= 0 {
		return fmt.Errorf("CONTEXT_TTL must be positive")
	}
	if c.Environment == "production" && c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}
