// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// and helpers to run functions inside a transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is the unit of work executed by a TxRunner.
type TxFunc func(ctx context.Context, tx DBTX) error

// TxRunner runs a unit of work atomically. *SQLRunner is the database/sql
// implementation; the in-memory store provides its own.
type TxRunner interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, fn TxFunc) error
}

// Serializable is used for operations that replace whole tables.
var Serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// Snapshot is used for multi-table reads that must see one consistent state.
var Snapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// SQLRunner adapts *sql.DB to TxRunner.
type SQLRunner struct {
	DB *sql.DB
}

// NewSQLRunner wraps db.
func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{DB: db}
}

// RunInTx delegates to WithTx.
func (r *SQLRunner) RunInTx(ctx context.Context, opts *sql.TxOptions, fn TxFunc) error {
	return WithTx(ctx, r.DB, opts, fn)
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM ingredients")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
