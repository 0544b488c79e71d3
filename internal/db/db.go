package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// ErrNoRows is returned by Row.Scan when the query matched nothing,
// whichever driver ran it.
var ErrNoRows = errors.New("no rows in result set")

// Executor runs parameterized statements. Statements are written with "?"
// placeholders; executors for drivers that number their parameters rebind them.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	// InTx runs fn against an executor bound to a single transaction,
	// committing when fn returns nil.
	InTx(ctx context.Context, fn func(Executor) error) error
}

// Rows is a forward-only result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Row is a single-row result
type Row interface {
	Scan(dest ...any) error
}

// DB is an open executor together with its connection lifecycle
type DB struct {
	Executor
	Dialect string
	close   func()
}

// Options selects the backing store. DatabaseURL wins over SQLitePath.
type Options struct {
	DatabaseURL string
	SQLitePath  string
	LogQueries  bool
}

// Open connects to the configured store and ensures the schema exists
func Open(ctx context.Context, opts Options) (*DB, error) {
	var (
		exec    Executor
		closeFn func()
		dialect string
	)

	if opts.DatabaseURL != "" {
		pg, err := ConnectPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		exec, closeFn, dialect = pg, pg.Close, "postgres"
	} else {
		lite, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		exec, closeFn, dialect = lite, func() { lite.Close() }, "sqlite"
	}

	exec = WithLogging(exec, opts.LogQueries)
	if err := EnsureSchema(ctx, exec, dialect); err != nil {
		closeFn()
		return nil, err
	}

	return &DB{Executor: exec, Dialect: dialect, close: closeFn}, nil
}

// Close releases the underlying pool
func (d *DB) Close() {
	if d.close != nil {
		d.close()
	}
}

// EnsureSchema creates the tables if they don't exist
func EnsureSchema(ctx context.Context, exec Executor, dialect string) error {
	raw, err := schemaFS.ReadFile("schema/" + dialect + ".sql")
	if err != nil {
		return fmt.Errorf("read %s schema: %w", dialect, err)
	}

	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := exec.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// rebind turns "?" placeholders into "$1", "$2", ...
func rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
