package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

const (
	BackendPostgres = "postgres"
	BackendBadger   = "badger"

	MinSecretLength = 32
)

type Config struct {
	AppName string `env:"APP_NAME,default=dm-chat"`
	Port    string `env:"PORT,default=8080"`

	// Security
	JWTSecret  string        `env:"JWT_SECRET,required=true"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,default=1h"`
	BcryptCost int           `env:"BCRYPT_COST,default=10"`

	// Storage
	StoreBackend      string        `env:"STORE_BACKEND,default=postgres"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	DBDriver          string        `env:"DB_DRIVER,default=pgx"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=5m"`
	BadgerPath        string        `env:"BADGER_PATH,default=./data/badger"`

	// Cache
	RedisURL        string        `env:"REDIS_URL"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	HistoryCacheTTL time.Duration `env:"HISTORY_CACHE_TTL,default=30s"`

	MaxMessageLength int    `env:"MAX_MESSAGE_LENGTH,default=4000"`
	AllowedOrigins   string `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogPretty bool   `env:"LOG_PRETTY,default=false"`
}

// Load reads the process environment. Call godotenv before it to pick up a .env file.
func Load() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.MaxMessageLength <= 0 {
		return errors.New("MAX_MESSAGE_LENGTH must be positive")
	}

	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
		if c.DBDriver != "pgx" && c.DBDriver != "postgres" {
			return fmt.Errorf("unknown DB_DRIVER %q (want pgx or postgres)", c.DBDriver)
		}
	case BackendBadger:
		if c.BadgerPath == "" {
			return errors.New("BADGER_PATH is required for the badger backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %s or %s)", c.StoreBackend, BackendPostgres, BackendBadger)
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS into a list
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}
