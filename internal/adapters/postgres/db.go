package postgres

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/marinewx/seatemp/internal/pkg/metrics"
)

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 50
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}

// providerInitTimeout bounds one shared connection attempt.
const providerInitTimeout = 10 * time.Second

// Provider builds the pool on first use. Concurrent first callers share one
// connection attempt; a failed attempt is retried by the next caller and a
// built pool is kept for the life of the process.
type Provider struct {
	connect func(ctx context.Context) (*DB, error)

	group singleflight.Group
	db    atomic.Pointer[DB]
}

// NewProvider returns a Provider that has not connected yet.
func NewProvider(dsn string, maxConns int32) *Provider {
	return &Provider{connect: func(ctx context.Context) (*DB, error) {
		return New(ctx, dsn, maxConns)
	}}
}

// NewProviderFromDB wraps an already open pool.
func NewProviderFromDB(db *DB) *Provider {
	p := &Provider{}
	p.db.Store(db)
	return p
}

// DB returns the shared pool, connecting if needed.
func (p *Provider) DB(ctx context.Context) (*DB, error) {
	if db := p.db.Load(); db != nil {
		return db, nil
	}
	v, err, _ := p.group.Do("pool", func() (any, error) {
		if db := p.db.Load(); db != nil {
			return db, nil
		}
		// The attempt is shared, so one caller giving up must not fail the rest.
		initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), providerInitTimeout)
		defer cancel()
		db, err := p.connect(initCtx)
		if err != nil {
			return nil, err
		}
		p.db.Store(db)
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DB), nil
}

// Ping checks connectivity, connecting first if needed.
func (p *Provider) Ping(ctx context.Context) error {
	db, err := p.DB(ctx)
	if err != nil {
		return err
	}
	return db.Pool.Ping(ctx)
}

// Close releases the pool if one was built.
func (p *Provider) Close() {
	if db := p.db.Load(); db != nil {
		db.Close()
	}
}

// ReportPoolStats samples pool statistics into metrics until ctx is done.
// Nothing is reported before the pool exists.
func (p *Provider) ReportPoolStats(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if db := p.db.Load(); db != nil {
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}
}
