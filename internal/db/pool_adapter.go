package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// PoolAdapter exposes a pgxpool.Pool through the Querier interface.
type PoolAdapter struct {
	pool *pgxpool.Pool
}

// NewPoolAdapter wraps a connection pool. Panics if pool is nil.
func NewPoolAdapter(pool *pgxpool.Pool) *PoolAdapter {
	if pool == nil {
		panic("pool cannot be nil")
	}
	return &PoolAdapter{pool: pool}
}

func (a *PoolAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.pool.Exec(ctx, sql, args...)
}

func (a *PoolAdapter) QueryRow(ctx context.Context, sql string, args ...any) xmlshred.Row {
	return rowAdapter{row: a.pool.QueryRow(ctx, sql, args...)}
}

// TxAdapter exposes a pgx.Tx through the Querier interface, so row loading
// runs inside the per-document transaction.
type TxAdapter struct {
	tx pgx.Tx
}

// NewTxAdapter wraps a transaction. Panics if tx is nil.
func NewTxAdapter(tx pgx.Tx) *TxAdapter {
	if tx == nil {
		panic("tx cannot be nil")
	}
	return &TxAdapter{tx: tx}
}

func (a *TxAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.tx.Exec(ctx, sql, args...)
}

func (a *TxAdapter) QueryRow(ctx context.Context, sql string, args ...any) xmlshred.Row {
	return rowAdapter{row: a.tx.QueryRow(ctx, sql, args...)}
}

type rowAdapter struct {
	row pgx.Row
}

func (r rowAdapter) Scan(dest ...any) error {
	return r.row.Scan(dest...)
}
