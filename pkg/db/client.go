package db

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/stallpos/pkg/config"
	"github.com/angelmondragon/stallpos/pkg/enums"
	"github.com/angelmondragon/stallpos/pkg/logger"
)

// Client is the GORM connection behind the sqlite and postgres persisters.
type Client struct {
	conn    *gorm.DB
	backend enums.StoreBackend
}

// New opens the database for backend and applies the pool settings.
// sqlite is held to a single open connection: it allows one writer and the
// snapshot row is rewritten on every mutation.
func New(ctx context.Context, backend enums.StoreBackend, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	dialector, err := dialectorFor(backend, cfg.DSN)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newQueryLogger(logg, cfg.SlowQuery),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", backend, err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	if backend == enums.StoreBackendSQLite {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}
	applyPool(sqlDB, cfg)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", backend, err)
	}
	logg.Info(logg.WithField(ctx, "backend", string(backend)), "db.connected")
	return &Client{conn: conn, backend: backend}, nil
}

// Wrap adopts an already-open connection, mainly for tests.
func Wrap(conn *gorm.DB) *Client {
	return &Client{conn: conn}
}

func dialectorFor(backend enums.StoreBackend, dsn string) (gorm.Dialector, error) {
	switch backend {
	case enums.StoreBackendPostgres:
		return postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), nil
	case enums.StoreBackendSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("store backend %q has no sql dialect", backend)
	}
}

func applyPool(sqlDB *sql.DB, cfg config.DBConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

func (c *Client) Backend() enums.StoreBackend {
	return c.backend
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn in a transaction that commits only when fn returns nil.
// A panic inside fn rolls back and is re-raised.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}
