package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverRedis  = "redis"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, default=dev-secret-change-me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	StorageDriver string `env:"STORAGE_DRIVER, default=memory"`
	SessionStore  string `env:"SESSION_STORE,  default=memory"`

	Auth       AuthConfig
	Dispatcher DispatcherConfig
	Mongo      MongoConfig
	Redis      RedisConfig
}

type AuthConfig struct {
	SeedDemoData               bool          `env:"SEED_DEMO_DATA,                default=true"`
	SeedPassword               string        `env:"SEED_PASSWORD,                 default=password"`
	Latency                    time.Duration `env:"AUTH_LATENCY,                  default=0s"`
	AllowStaffSelfRegistration bool          `env:"ALLOW_STAFF_SELF_REGISTRATION, default=false"`
	LoginMaxFailures           int           `env:"LOGIN_MAX_FAILURES,            default=5"`
	LoginLockout               time.Duration `env:"LOGIN_LOCKOUT,                 default=15m"`
}

type DispatcherConfig struct {
	Workers int `env:"DISPATCHER_WORKERS, default=8"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=helpdesk"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether human-friendly defaults (pretty logs) apply.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Validate rejects unknown drivers.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory, DriverMongo:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.SessionStore {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
