package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Gateway runs parameterized statements against the store. Statements use
// $N placeholders numbered in order of first appearance so they run on
// both postgres and sqlite3.
type Gateway struct {
	q      querier
	db     *sql.DB // nil inside a transaction
	driver string
}

// New wraps an open handle
func New(db *sql.DB, driver string) *Gateway {
	return &Gateway{q: db, db: db, driver: driver}
}

// Driver returns the driver name the gateway was opened with
func (g *Gateway) Driver() string {
	return g.driver
}

// Insert runs an INSERT ... RETURNING <id> statement and returns the new id
func (g *Gateway) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := g.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert failed: %w", err)
	}
	return id, nil
}

// Exec runs a statement and returns the number of affected rows
func (g *Gateway) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := g.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("exec failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Query runs a statement returning rows. The caller closes them.
func (g *Gateway) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := g.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

func (g *Gateway) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return g.q.QueryRowContext(ctx, query, args...)
}

// WithTx runs fn inside one transaction, committing on success. Called on
// a gateway that is already transactional it simply runs fn.
func (g *Gateway) WithTx(ctx context.Context, fn func(tx *Gateway) error) (err error) {
	if g.db == nil {
		return fn(g)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Gateway{q: tx, driver: g.driver}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks the connection
func (g *Gateway) Ping(ctx context.Context) error {
	if g.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return g.db.PingContext(ctx)
}

// Close closes the underlying handle
func (g *Gateway) Close() error {
	if g.db != nil {
		return g.db.Close()
	}
	return nil
}
