// Package dbx is the thin seam between the repositories and database/sql.
// Repositories take a DBTX so the same query code runs against a plain
// connection or inside a transaction; WithTx supplies the transactional
// variant.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX covers the three query methods the repositories actually call.
// *sql.DB and *sql.Tx both satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx opens a transaction and hands it to fn as a DBTX. The
// transaction commits when fn returns nil and rolls back when it returns
// an error or panics; a panic is re-raised after the rollback.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
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
