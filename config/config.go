package config

import (
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	AppName                       string `env:"APP_NAME" env-default:"sistema-analise"`
	AppVersion                    string `env:"APP_VERSION" env-default:"dev"`
	Port                          int    `env:"APP_PORT" env-default:"5000"`
	LogLevel                      string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool   `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int    `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"60"`
	HttpServerReadTimeoutSeconds  int    `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int    `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"60"`
	MaxHeaderBytes                int    `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int    `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	StartupMaxAttempts            int    `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`
	// Directory of the dashboard's HTML, JS and CSS
	StaticDir string `env:"STATIC_DIR" env-default:"static"`

	// SQLite file produced by the offline loader
	DatabasePath string `env:"DB_PATH" env-default:"dados.db"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"8"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"4"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	// Busy timeout while the loader holds the write lock
	DatabaseBusyTimeout time.Duration `env:"DB_BUSY_TIMEOUT" env-default:"5s"`
	// Directory of *.sql migrations; empty uses the ones compiled into the binary
	DatabaseMigrationsPath string `env:"DB_MIGRATIONS_PATH" env-default:""`
	// Database Migration Version, 0 migrates to the latest
	DatabaseMigrationVersion int `env:"DB_MIGRATION_VERSION" env-default:"0"`
	// Database Migration Auto Rollback
	DatabaseMigrationAutoRollback bool `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`
	// How long table introspection is cached
	SchemaCacheTTL time.Duration `env:"DB_SCHEMA_CACHE_TTL" env-default:"1m"`

	// Use Redis for the login rate limiter; the in-memory limiter is used otherwise
	RedisEnabled bool `env:"REDIS_ENABLED" env-default:"false"`
	// Redis host
	RedisHost string `env:"REDIS_HOST" env-default:"localhost"`
	// Redis port
	RedisPort int `env:"REDIS_PORT" env-default:"6379"`
	// Redis password
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	// Redis database number
	RedisDB int `env:"REDIS_DB" env-default:"0"`

	// HMAC secret signing the session cookie
	SessionSecret     string `env:"SESSION_SECRET" env-default:""`
	SessionCookieName string `env:"SESSION_COOKIE_NAME" env-default:"sistema_session"`
	SessionSecure     bool   `env:"SESSION_SECURE" env-default:"false"`

	// Administrator account created on first start
	AdminUsername string `env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:""`

	// Login attempts allowed per client IP inside the window
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" env-default:"5"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" env-default:"1m"`

	// Tracing settings
	TracingEnabled bool `env:"TRACING_ENABLED" env-default:"false"`
	// console or otlp
	TracingExporter string `env:"TRACING_EXPORTER" env-default:"console"`
	// OTLP collector endpoint
	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	// OTLP protocol (grpc or http)
	OTLPProtocol string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	// Disable TLS for OTLP (for local development)
	OTLPInsecure bool `env:"OTLP_INSECURE" env-default:"true"`

	MetricsEnabled bool `env:"METRICS_ENABLED" env-default:"true"`
}

// Load reads an optional .env file and binds the environment into a Config.
func Load(files ...string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := ectoenv.BindEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to bind environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD is required")
	}
	if c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0 {
		return errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive")
	}
	switch c.TracingExporter {
	case "console", "otlp":
	default:
		return errors.Errorf("unknown TRACING_EXPORTER %q", c.TracingExporter)
	}
	return nil
}
