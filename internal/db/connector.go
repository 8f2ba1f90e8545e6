package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/xmlshred/internal/retry"
	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// Pool sizing for a batch loader: one connection per in-flight document
// plus headroom for the audit writer.
const (
	defaultMaxConns        = 5
	defaultMinConns        = 1
	defaultMaxConnLifetime = 30 * time.Minute
	defaultMaxConnIdleTime = 5 * time.Minute
)

// StandardConnector establishes pooled connections using a plain
// connection string, retrying transient failures.
type StandardConnector struct {
	connectionString string
	logger           xmlshred.Logger
	executor         *retry.Executor
}

// NewConnector creates a connector for the given connection string.
// Panics if logger is nil.
func NewConnector(connectionString string, logger xmlshred.Logger) *StandardConnector {
	if logger == nil {
		panic("logger cannot be nil")
	}

	classifier := retry.NewPostgreSQLErrorClassifier()
	strategy := retry.NewExponentialBackoff(
		xmlshred.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(xmlshred.DefaultRetryInitialDelay),
		retry.WithMaxDelay(xmlshred.DefaultRetryMaxDelay),
	)

	executor := retry.NewExecutor(classifier, strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("Connection attempt %d failed, retrying in %v: %v", attempt, delay, err)
		})

	return &StandardConnector{
		connectionString: connectionString,
		logger:           logger,
		executor:         executor,
	}
}

// Connect establishes a connection pool, validating it with a ping.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(c.connectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid connection string: %v", xmlshred.ErrConnectionFailed, err)
	}
	configurePool(poolConfig)

	var pool *pgxpool.Pool
	err = c.executor.Execute(ctx, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, wrapConnectionError(err)
	}

	return pool, nil
}

func configurePool(config *pgxpool.Config) {
	config.MaxConns = defaultMaxConns
	config.MinConns = defaultMinConns
	config.MaxConnLifetime = defaultMaxConnLifetime
	config.MaxConnIdleTime = defaultMaxConnIdleTime
}

// wrapConnectionError attaches a hint for the common failure modes so the
// CLI error message is actionable without reading pg logs.
func wrapConnectionError(err error) error {
	msg := err.Error()

	switch {
	case strings.Contains(msg, "password authentication failed"):
		return fmt.Errorf("%w: authentication failed, verify username and password: %v",
			xmlshred.ErrConnectionFailed, err)
	case strings.Contains(msg, "connection refused"):
		return fmt.Errorf("%w: server refused connection, verify host and port and that PostgreSQL is running: %v",
			xmlshred.ErrConnectionFailed, err)
	case strings.Contains(msg, "does not exist") && strings.Contains(msg, "database"):
		return fmt.Errorf("%w: database does not exist: %v",
			xmlshred.ErrConnectionFailed, err)
	case strings.Contains(msg, "no such host"):
		return fmt.Errorf("%w: host not found, verify the hostname: %v",
			xmlshred.ErrConnectionFailed, err)
	default:
		return fmt.Errorf("%w: %v", xmlshred.ErrConnectionFailed, err)
	}
}
