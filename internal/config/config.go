package config

import (
	"fmt"
	"time"

	"github.com/r4nb1r/ProfilePulse/internal/gateway"
	pkgconfig "github.com/r4nb1r/ProfilePulse/pkg/config"
	"github.com/r4nb1r/ProfilePulse/pkg/database"
)

// ServiceName labels logs, metrics and traces.
const ServiceName = "profilepulse"

const defaultSessionSecret = "profile-pulse-secret"

// Store and session backends.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds all configuration for the service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort            int           `env:"HTTP_PORT" envDefault:"10000"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Sessions
	SessionSecret        string        `env:"SESSION_SECRET" envDefault:"profile-pulse-secret"`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"pp_session"`
	SessionStore         string        `env:"SESSION_STORE" envDefault:"memory"`
	SessionPruneInterval time.Duration `env:"SESSION_PRUNE_INTERVAL" envDefault:"24h"`

	// Profile and user store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`

	// PostgreSQL
	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"profilepulse"`
	PostgresPass     string        `env:"POSTGRES_PASSWORD" envDefault:"profilepulse"`
	PostgresDB       string        `env:"POSTGRES_DB" envDefault:"profilepulse"`
	PostgresSSL      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns       int32         `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLife    time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdle    time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBSlowQueryLimit time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI" envDefault:"http://localhost:10000/api/auth/callback"`
	GoogleAuthURL      string `env:"GOOGLE_AUTH_URL"`
	GoogleTokenURL     string `env:"GOOGLE_TOKEN_URL"`

	// Listing gateway
	GBPAccountsURL    string        `env:"GBP_ACCOUNTS_URL" envDefault:"https://mybusinessaccountmanagement.googleapis.com/v1"`
	GBPInfoURL        string        `env:"GBP_INFO_URL" envDefault:"https://mybusinessbusinessinformation.googleapis.com/v1"`
	GatewayMode       string        `env:"GATEWAY_MODE" envDefault:"legacy-fallback"`
	GatewayTimeout    time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	GatewayMaxRetries int           `env:"GATEWAY_MAX_RETRIES" envDefault:"0"`

	// Orchestration
	OrchestrationAsync   bool          `env:"ORCHESTRATION_ASYNC" envDefault:"false"`
	OrchestrationTimeout time.Duration `env:"ORCHESTRATION_TIMEOUT" envDefault:"30s"`

	// Account binding
	AuthSuccessRedirect string `env:"AUTH_SUCCESS_REDIRECT" envDefault:"/"`
	DemoUsername        string `env:"DEMO_USERNAME" envDefault:"demo"`
	DemoPassword        string `env:"DEMO_PASSWORD" envDefault:"demo"`

	// Rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate is run by pkgconfig.Load after parsing.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if err := pkgconfig.OneOf("STORE_DRIVER", c.StoreDriver, DriverMemory, DriverPostgres); err != nil {
		return err
	}
	if err := pkgconfig.OneOf("SESSION_STORE", c.SessionStore, DriverMemory, DriverRedis); err != nil {
		return err
	}
	if _, err := gateway.ParseMode(c.GatewayMode); err != nil {
		return err
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionStore == DriverMemory && c.SessionPruneInterval <= 0 {
		return fmt.Errorf("SESSION_PRUNE_INTERVAL must be positive, got %s", c.SessionPruneInterval)
	}
	if c.GatewayTimeout < 0 || c.OrchestrationTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.GatewayMaxRetries < 0 {
		return fmt.Errorf("GATEWAY_MAX_RETRIES must not be negative, got %d", c.GatewayMaxRetries)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %g", c.OTELSampleRate)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	if c.DemoUsername == "" {
		return fmt.Errorf("DEMO_USERNAME must not be empty")
	}

	// Outside development, require an explicitly set, strong session secret.
	if c.Environment != "development" {
		if c.SessionSecret == defaultSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.SessionSecret) < 32 {
			return fmt.Errorf("SESSION_SECRET must be at least 32 characters long, got %d", len(c.SessionSecret))
		}
	}
	return nil
}

// Mode returns the parsed gateway mode. Validate guarantees it is valid.
func (c *Config) Mode() gateway.Mode {
	m, _ := gateway.ParseMode(c.GatewayMode)
	return m
}

// SecureCookies reports whether the session cookie needs the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Environment == "production"
}

// Postgres returns the connection pool settings.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLife,
		MaxConnIdleTime: c.DBMaxConnIdle,
	}
}

// Redis returns the redis client settings.
func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc
}
