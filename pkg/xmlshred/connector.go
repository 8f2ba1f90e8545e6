package xmlshred

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector is a unified interface for establishing database connections.
// Implementations handle connection-string parsing, pooling, and retry on
// transient failures.
type Connector interface {
	// Connect establishes a connection pool to the target database.
	// The returned pool should be closed by the caller when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
