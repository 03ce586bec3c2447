package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Store backend names accepted in STORE.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
)

// Config holds all configuration for the shop binary.
type Config struct {
	// Storage
	Store       string `conf:"default:file,env:STORE"`
	StoreKey    string `conf:"default:items,env:STORE_KEY"`
	DataDir     string `conf:"env:DATA_DIR"` // empty = working directory
	RedisURL    string `conf:"default:redis://localhost:6379,env:REDIS_URL"`
	DatabaseURL string `conf:"env:DATABASE_URL,noprint"`

	// Output
	LogLevel string `conf:"default:warn,env:LOG_LEVEL"`
	Theme    string `conf:"default:classic,env:THEME"`

	// HTTP API (shop serve)
	HTTPAddr           string `conf:"default:localhost:8080,env:HTTP_ADDR"`
	APIToken           string `conf:"env:API_TOKEN,noprint"`
	CORSAllowedOrigins string `conf:"default:*,env:CORS_ALLOWED_ORIGINS"`
	RateLimitPerMin    int    `conf:"default:120,env:RATE_LIMIT_PER_MIN"`
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (*Config, error) {
	var cfg Config
	_ = godotenv.Load()

	// conf also parses os.Args; the CLI owns those, so hide them.
	args := os.Args
	os.Args = args[:1]
	defer func() { os.Args = args }()

	if _, err := conf.Parse("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Themes accepted in THEME.
var Themes = []string{"classic", "neon", "mono"}

// Validate checks enumerated values and combinations the struct tags cannot
// express.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreMemory, StoreRedis, StoreSQLite, StorePostgres, StoreMySQL:
	default:
		return fmt.Errorf("unknown store %q (want file, memory, redis, sqlite, postgres or mysql)", c.Store)
	}
	if !slices.Contains(Themes, c.Theme) {
		return fmt.Errorf("unknown theme %q (want classic, neon or mono)", c.Theme)
	}

	switch c.Store {
	case StorePostgres, StoreMySQL, StoreSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE=%s requires DATABASE_URL", c.Store)
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("STORE=redis requires REDIS_URL")
		}
	}
	if c.StoreKey == "" {
		return errors.New("STORE_KEY must not be empty")
	}
	return nil
}

// String renders the non-secret settings for `shop config`.
func (c *Config) String() string {
	out, err := conf.String(c)
	if err != nil {
		return err.Error()
	}
	return out
}
