package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteExecutor runs statements on a SQLite database file
type SQLiteExecutor struct {
	db   *sql.DB
	conn sqlConn
}

// OpenSQLite opens (creating if needed) the database file at path
func OpenSQLite(path string) (*SQLiteExecutor, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &SQLiteExecutor{db: db, conn: db}, nil
}

// Close closes the database
func (e *SQLiteExecutor) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

func (e *SQLiteExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (e *SQLiteExecutor) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := e.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

func (e *SQLiteExecutor) QueryRow(ctx context.Context, query string, args ...any) Row {
	return sqlRow{e.conn.QueryRowContext(ctx, query, args...)}
}

func (e *SQLiteExecutor) InTx(ctx context.Context, fn func(Executor) error) error {
	if e.db == nil {
		return fn(e)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&SQLiteExecutor{conn: tx}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() {
	r.Rows.Close()
}

type sqlRow struct {
	row *sql.Row
}

func (r sqlRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoRows
	}
	return err
}
