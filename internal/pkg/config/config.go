package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=5000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET, required"`

	JWTExpiresIn    time.Duration `env:"JWT_EXPIRES_IN,   default=168h"`
	BcryptCost      int           `env:"BCRYPT_COST,      default=10"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Mongo MongoConfig
	Redis RedisConfig
	Login LoginConfig
	HTTP  HTTPConfig
	Seed  SeedConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=sweetshop"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

// RedisConfig configures the login throttle store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type LoginConfig struct {
	MaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS,   default=5"`
	LockoutWindow time.Duration `env:"LOGIN_LOCKOUT_WINDOW, default=15m"`
}

type HTTPConfig struct {
	// RateLimitRPS caps auth requests per client IP. Zero disables the limiter.
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS,       default=20"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*"`
	BodyLimit      string   `env:"BODY_LIMIT,           default=1M"`
}

// SeedConfig names the default accounts created (or reset) at startup.
type SeedConfig struct {
	Enabled          bool   `env:"SEED_USERS,              default=true"`
	AdminEmail       string `env:"SEED_ADMIN_EMAIL,        default=admin@sweetshop.com"`
	AdminPassword    string `env:"SEED_ADMIN_PASSWORD,     default=admin123"`
	CustomerEmail    string `env:"SEED_CUSTOMER_EMAIL,     default=customer@sweetshop.com"`
	CustomerPassword string `env:"SEED_CUSTOMER_PASSWORD,  default=customer123"`
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be blank")
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.HTTP.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}
