package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/stallpos/pkg/enums"
)

type Config struct {
	App         AppConfig
	Store       StoreConfig
	DB          DBConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	CORS        CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	switch cfg.Store.Backend {
	case enums.StoreBackendSQLite, enums.StoreBackendPostgres:
		if err := cfg.DB.ensureDSN(cfg.Store.Backend); err != nil {
			return nil, err
		}
	case enums.StoreBackendRedis:
		if !cfg.Redis.Enabled() {
			return nil, fmt.Errorf("%s or %s is required for the redis store backend", EnvRedisURL, EnvRedisAddr)
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STALLPOS_APP_ENV" default:"dev"`
	Port         string `envconfig:"STALLPOS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STALLPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STALLPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig picks where the state document lives and which status flow the
// lifecycle engine runs.
type StoreConfig struct {
	Backend     enums.StoreBackend `envconfig:"STALLPOS_STORE_BACKEND" default:"file"`
	FilePath    string             `envconfig:"STALLPOS_STORE_FILE" default:"data/state.json"`
	SnapshotKey string             `envconfig:"STALLPOS_STORE_SNAPSHOT_KEY" default:"state"`
	OrderFlow   enums.OrderFlow    `envconfig:"STALLPOS_ORDER_FLOW" default:"full"`
}

func (s StoreConfig) validate() error {
	if !s.Backend.IsValid() {
		return fmt.Errorf("%s: unsupported store backend %q", EnvStoreBackend, s.Backend)
	}
	if !s.OrderFlow.IsValid() {
		return fmt.Errorf("%s: unsupported order flow %q", EnvOrderFlow, s.OrderFlow)
	}
	if s.Backend == enums.StoreBackendFile && strings.TrimSpace(s.FilePath) == "" {
		return fmt.Errorf("%s is required for the file store backend", EnvStoreFile)
	}
	return nil
}

type DBConfig struct {
	DSN string `envconfig:"STALLPOS_DB_DSN"`

	MaxOpenConns    int           `envconfig:"STALLPOS_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"STALLPOS_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"STALLPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STALLPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"STALLPOS_DB_SLOW_QUERY" default:"200ms"`
}

// ensureDSN defaults sqlite to a local file; postgres has no sensible default.
func (db *DBConfig) ensureDSN(backend enums.StoreBackend) error {
	if db.DSN != "" {
		return nil
	}
	if backend == enums.StoreBackendSQLite {
		db.DSN = DefaultSQLiteDSN
		return nil
	}
	return fmt.Errorf("%s is required for the %s store backend", EnvDBDSN, backend)
}

type RedisConfig struct {
	URL          string        `envconfig:"STALLPOS_REDIS_URL"`
	Address      string        `envconfig:"STALLPOS_REDIS_ADDR"`
	Password     string        `envconfig:"STALLPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"STALLPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STALLPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STALLPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STALLPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STALLPOS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STALLPOS_REDIS_WRITE_TIMEOUT" default:"3s"`
	// Namespace prefixes every key so several stalls can share one redis.
	Namespace string `envconfig:"STALLPOS_REDIS_NAMESPACE" default:"stallpos"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"STALLPOS_IDEMPOTENCY_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STALLPOS_CORS_ALLOWED_ORIGINS" default:"*"`
}

// DisplayConfig drives the headless display poller.
type DisplayConfig struct {
	LogLevel       string            `envconfig:"STALLPOS_LOG_LEVEL" default:"info"`
	APIBaseURL     string            `envconfig:"STALLPOS_DISPLAY_API_URL" default:"http://localhost:8080"`
	Kind           enums.DisplayKind `envconfig:"STALLPOS_DISPLAY_KIND" default:"kds"`
	OrderFlow      enums.OrderFlow   `envconfig:"STALLPOS_ORDER_FLOW" default:"full"`
	PollInterval   time.Duration     `envconfig:"STALLPOS_DISPLAY_POLL_INTERVAL" default:"1500ms"`
	ReadyLimit     int               `envconfig:"STALLPOS_DISPLAY_READY_LIMIT" default:"9"`
	HistoryLimit   int               `envconfig:"STALLPOS_DISPLAY_HISTORY_LIMIT" default:"10"`
	RequestTimeout time.Duration     `envconfig:"STALLPOS_DISPLAY_REQUEST_TIMEOUT" default:"5s"`
}

func LoadDisplay() (*DisplayConfig, error) {
	var cfg DisplayConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing display config: %w", err)
	}
	if !cfg.Kind.IsValid() {
		return nil, fmt.Errorf("%s: unsupported display kind %q", EnvDisplayKind, cfg.Kind)
	}
	if !cfg.OrderFlow.IsValid() {
		return nil, fmt.Errorf("%s: unsupported order flow %q", EnvOrderFlow, cfg.OrderFlow)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvDisplayPollInterval)
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("%s is required", EnvDisplayAPIURL)
	}
	return &cfg, nil
}
