package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	App       AppConfig
	Superuser SuperuserConfig
	Media     MediaConfig
	Redis     RedisConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST, default=localhost"`
	Port     string `env:"DB_PORT, default=5432"`
	User     string `env:"DB_USER, default=postgres"`
	Password string `env:"DB_PASSWORD"`
	DBName   string `env:"DB_NAME, default=findhome"`
	SSLMode  string `env:"DB_SSLMODE, default=disable"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               string        `env:"SERVER_PORT, default=8080"`
	AllowedOrigins     []string      `env:"CORS_ORIGINS, default=http://localhost:3000"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE, default=120"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT, default=5s"`
	SecureCookies      bool          `env:"SECURE_COOKIES, default=false"`
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
}

// SuperuserConfig is the account created on first migration
type SuperuserConfig struct {
	Username string `env:"SUPERUSER_USERNAME, default=admin"`
	Password string `env:"SUPERUSER_PASSWORD, default=adminpass"`
	Email    string `env:"SUPERUSER_EMAIL, default=admin@example.com"`
}

// MediaConfig holds settings for the S3 compatible image store
type MediaConfig struct {
	Bucket         string `env:"MEDIA_BUCKET"`
	Endpoint       string `env:"MEDIA_ENDPOINT"`
	Region         string `env:"MEDIA_REGION, default=us-east-1"`
	AccessKey      string `env:"MEDIA_ACCESS_KEY"`
	SecretKey      string `env:"MEDIA_SECRET_KEY"`
	PublicURL      string `env:"MEDIA_PUBLIC_URL"`
	ForcePathStyle bool   `env:"MEDIA_FORCE_PATH_STYLE, default=true"`
}

// Enabled reports whether image uploads are configured
func (m MediaConfig) Enabled() bool {
	return m.Bucket != ""
}

// RedisConfig holds the token revocation store address
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// LogConfig controls zerolog output
type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Format string `env:"LOG_FORMAT, default=console"`
}

// TelemetryConfig holds the OTLP trace exporter endpoint
type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME, default=findhome"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith loads configuration from the given lookuper
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	// Validate required fields
	if cfg.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Superuser.Username == "" || cfg.Superuser.Password == "" {
		return nil, fmt.Errorf("SUPERUSER_USERNAME and SUPERUSER_PASSWORD must not be empty")
	}

	return &cfg, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	if strings.TrimSpace(c.Database.URL) != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}
