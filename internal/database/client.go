package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// Client is an injected, lazily-connecting handle to Postgres. The first
// caller to need the pool establishes it; concurrent first callers collapse
// onto one dial through the singleflight group, and a failed dial leaves the
// client unconnected so a later request can retry.
type Client struct {
	databaseURL string
	maxConns    int32
	minConns    int32

	group singleflight.Group
	mu    sync.RWMutex
	pool  *pgxpool.Pool
}

func NewClient(databaseURL string, maxConns int32, minConns int32) *Client {
	return &Client{
		databaseURL: databaseURL,
		maxConns:    maxConns,
		minConns:    minConns,
	}
}

// Pool returns the shared connection pool, dialing and migrating on first use.
func (c *Client) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	c.mu.RLock()
	pool := c.pool
	c.mu.RUnlock()
	if pool != nil {
		return pool, nil
	}

	v, err, _ := c.group.Do("connect", func() (any, error) {
		c.mu.RLock()
		existing := c.pool
		c.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		created, connErr := c.connect(ctx)
		if connErr != nil {
			return nil, connErr
		}

		c.mu.Lock()
		c.pool = created
		c.mu.Unlock()
		return created, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*pgxpool.Pool), nil
}

func (c *Client) connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	cfg.MaxConns = c.maxConns
	cfg.MinConns = c.minConns
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("database connected", "max_conns", c.maxConns, "min_conns", c.minConns)
	return pool, nil
}

// Health reports whether the database is reachable, connecting if necessary.
func (c *Client) Health(ctx context.Context) error {
	pool, err := c.Pool(ctx)
	if err != nil {
		return err
	}

	return pool.Ping(ctx)
}

// Connected reports whether a pool has been established without dialing.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pool != nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}
