package db

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

type loggingExecutor struct {
	next    Executor
	verbose bool
}

// WithLogging wraps exec so failing statements are always logged, and every
// statement with its elapsed time when verbose is set.
func WithLogging(exec Executor, verbose bool) Executor {
	return &loggingExecutor{next: exec, verbose: verbose}
}

func (l *loggingExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	start := time.Now()
	n, err := l.next.Exec(ctx, query, args...)
	l.record(query, start, err)
	return n, err
}

func (l *loggingExecutor) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	start := time.Now()
	rows, err := l.next.Query(ctx, query, args...)
	l.record(query, start, err)
	return rows, err
}

func (l *loggingExecutor) QueryRow(ctx context.Context, query string, args ...any) Row {
	start := time.Now()
	row := l.next.QueryRow(ctx, query, args...)
	return &loggedRow{row: row, query: query, start: start, l: l}
}

func (l *loggingExecutor) InTx(ctx context.Context, fn func(Executor) error) error {
	return l.next.InTx(ctx, func(tx Executor) error {
		return fn(&loggingExecutor{next: tx, verbose: l.verbose})
	})
}

func (l *loggingExecutor) record(query string, start time.Time, err error) {
	if err != nil && !errors.Is(err, ErrNoRows) {
		log.Printf("query failed: %s: %v", compact(query), err)
		return
	}
	if l.verbose {
		log.Printf("query: %s (%s)", compact(query), time.Since(start).Round(time.Microsecond))
	}
}

type loggedRow struct {
	row   Row
	query string
	start time.Time
	l     *loggingExecutor
}

func (r *loggedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	r.l.record(r.query, r.start, err)
	return err
}

func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
