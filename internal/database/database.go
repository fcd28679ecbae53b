// Package database holds thin query helpers over the shared *sql.DB pool.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wichananm65/fakturera/internal/config"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RowScanner is the Scan half of *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanFunc turns one result row into a T.
type ScanFunc[T any] func(RowScanner) (T, error)

// Open creates the pgx-backed pool. It does not touch the network; use Ping
// to check connectivity.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("database url is not set")
	}
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdle)
	return db, nil
}

// Ping checks the pool can reach the server within timeout.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

// Select runs a query and scans every row.
func Select[T any](ctx context.Context, q Querier, scan ScanFunc[T], query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectOne runs a query expected to return at most one row. found is false
// when there is no row.
func SelectOne[T any](ctx context.Context, q Querier, scan ScanFunc[T], query string, args ...any) (v T, found bool, err error) {
	v, err = scan(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

// Exec runs a statement and returns the number of affected rows.
func Exec(ctx context.Context, q Querier, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertReturning appends "RETURNING <returning>" to an INSERT and scans the
// inserted row.
func InsertReturning[T any](ctx context.Context, q Querier, scan ScanFunc[T], query, returning string, args ...any) (T, error) {
	v, found, err := SelectOne(ctx, q, scan, query+" RETURNING "+returning, args...)
	if err != nil {
		return v, err
	}
	if !found {
		return v, errors.New("insert returned no row")
	}
	return v, nil
}

// UpdateReturning appends "RETURNING <returning>" to an UPDATE. found is false
// when the WHERE clause matched nothing.
func UpdateReturning[T any](ctx context.Context, q Querier, scan ScanFunc[T], query, returning string, args ...any) (T, bool, error) {
	return SelectOne(ctx, q, scan, query+" RETURNING "+returning, args...)
}

// WithTx runs fn inside a transaction, committing when it returns nil and
// rolling back on error or panic.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Now returns the database server time.
func Now(ctx context.Context, q Querier) (time.Time, error) {
	var now time.Time
	if err := q.QueryRowContext(ctx, `SELECT NOW() AS current_time`).Scan(&now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}
