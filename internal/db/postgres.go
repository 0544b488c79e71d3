package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxPoolConns = 10

type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgExecutor runs statements on a pgx pool, or on a transaction opened from it.
type PgExecutor struct {
	pool *pgxpool.Pool
	conn pgConn
}

// ConnectPostgres opens a pool against databaseURL and checks it answers
func ConnectPostgres(ctx context.Context, databaseURL string) (*PgExecutor, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = maxPoolConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PgExecutor{pool: pool, conn: pool}, nil
}

// Close closes the pool
func (e *PgExecutor) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

func (e *PgExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := e.conn.Exec(ctx, rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (e *PgExecutor) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := e.conn.Query(ctx, rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (e *PgExecutor) QueryRow(ctx context.Context, query string, args ...any) Row {
	return pgRow{e.conn.QueryRow(ctx, rebind(query), args...)}
}

func (e *PgExecutor) InTx(ctx context.Context, fn func(Executor) error) error {
	if e.pool == nil {
		// already inside a transaction
		return fn(e)
	}
	return pgx.BeginFunc(ctx, e.pool, func(tx pgx.Tx) error {
		return fn(&PgExecutor{conn: tx})
	})
}

type pgRow struct {
	row pgx.Row
}

func (r pgRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoRows
	}
	return err
}
