package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marinewx/seatemp/internal/core/domain"
)

const cursorName = "sea_temperature_cursor"

// seaTemperatureCursor reads projected rows from a server-side cursor, one
// FETCH of batchSize rows at a time. It owns a pooled connection and a
// read-only transaction until Close.
type seaTemperatureCursor struct {
	conn      *pgxpool.Conn
	tx        pgx.Tx
	batchSize int

	buf    []domain.RawRecord
	pos    int
	cur    domain.RawRecord
	done   bool
	err    error
	closed bool
}

func openSeaTemperatureCursor(ctx context.Context, pool *pgxpool.Pool, pred domain.CompiledPredicate, batchSize int) (*seaTemperatureCursor, error) {
	where, args := renderPredicate(pred)
	query := fmt.Sprintf(
		"DECLARE %s NO SCROLL CURSOR FOR SELECT ST_X(position), ST_Y(position), sea_surface_temperature FROM weather_reports WHERE %s",
		cursorName, where,
	)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("begin: %w", err)
	}

	// DECLARE takes no bind parameters, so arguments are interpolated client side.
	execArgs := append([]any{pgx.QueryExecModeSimpleProtocol}, args...)
	if _, err := tx.Exec(ctx, query, execArgs...); err != nil {
		_ = tx.Rollback(context.Background())
		conn.Release()
		return nil, fmt.Errorf("declare cursor: %w", err)
	}

	return &seaTemperatureCursor{conn: conn, tx: tx, batchSize: batchSize}, nil
}

func (c *seaTemperatureCursor) Next(ctx context.Context) bool {
	if c.closed || c.err != nil {
		return false
	}
	if c.pos >= len(c.buf) {
		if c.done {
			return false
		}
		if err := c.fetch(ctx); err != nil {
			c.err = err
			return false
		}
		if len(c.buf) == 0 {
			return false
		}
	}
	c.cur = c.buf[c.pos]
	c.pos++
	return true
}

func (c *seaTemperatureCursor) fetch(ctx context.Context) error {
	rows, err := c.tx.Query(ctx, fmt.Sprintf("FETCH FORWARD %d FROM %s", c.batchSize, cursorName))
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RawRecord, error) {
		var r domain.RawRecord
		err := row.Scan(&r.Longitude, &r.Latitude, &r.SeaSurfaceTemperature)
		return r, err
	})
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	c.buf, c.pos = recs, 0
	c.done = len(recs) < c.batchSize
	return nil
}

func (c *seaTemperatureCursor) Record() domain.RawRecord { return c.cur }

func (c *seaTemperatureCursor) Err() error { return c.err }

// Close releases server resources. It runs on a fresh context so a cancelled
// request still closes its cursor.
func (c *seaTemperatureCursor) Close() {
	if c.closed {
		return
	}
	c.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := c.tx.Exec(ctx, "CLOSE "+cursorName); err != nil {
		slog.Debug("close cursor", "error", err)
	}
	if err := c.tx.Rollback(ctx); err != nil {
		slog.Debug("rollback cursor tx", "error", err)
	}
	c.conn.Release()
}
