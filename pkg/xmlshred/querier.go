package xmlshred

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Querier abstracts the statement-execution surface the row loader and the
// audit store need. It is satisfied by adapters over pgx transactions and
// pools, which keeps the loading code testable without a live server.
//
// Thread-Safety: follows the underlying connection's guarantees. Transaction
// adapters must not be shared between goroutines.
type Querier interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// QueryRow executes a query that is expected to return at most one row.
	// Always returns a non-nil Row. Errors are deferred until Row's Scan
	// method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// Row represents a single row returned by QueryRow.
// This interface decouples callers from pgx.Row.
type Row interface {
	// Scan reads the values from the row into dest values.
	// Returns an error if no row was found or if the scan fails.
	Scan(dest ...any) error
}
