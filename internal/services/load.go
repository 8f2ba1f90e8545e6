package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/xmlshred/internal/audit"
	"github.com/vvka-141/xmlshred/internal/db"
	"github.com/vvka-141/xmlshred/internal/extract"
	"github.com/vvka-141/xmlshred/internal/loader"
	"github.com/vvka-141/xmlshred/internal/model"
	"github.com/vvka-141/xmlshred/internal/retry"
	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// LoadService shreds XML documents into the relational schema. Each
// document is loaded in its own transaction; a failed document rolls back
// alone and the run continues.
//
// Not safe for concurrent Load() calls on the same instance.
type LoadService struct {
	connectorFactory ConnectorFactory
	logger           xmlshred.Logger
	auditStore       *audit.Store
	executor         *retry.Executor
}

// NewLoadService creates a load service with all dependencies injected.
// Panics on nil dependencies.
func NewLoadService(
	connectorFactory ConnectorFactory,
	logger xmlshred.Logger,
	auditStore *audit.Store,
) *LoadService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if auditStore == nil {
		panic("auditStore cannot be nil")
	}

	executor := retry.NewExecutor(
		retry.NewPostgreSQLErrorClassifier(),
		retry.NewExponentialBackoff(
			xmlshred.DefaultRetryMaxAttempts,
			retry.WithInitialDelay(xmlshred.DefaultRetryInitialDelay),
			retry.WithMaxDelay(xmlshred.DefaultRetryMaxDelay),
		),
	).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Verbose("Document load attempt %d failed, retrying in %v: %v", attempt, delay, err)
	})

	return &LoadService{
		connectorFactory: connectorFactory,
		logger:           logger,
		auditStore:       auditStore,
		executor:         executor,
	}
}

// Load runs the full loading workflow: compile the schema once, match
// documents against the glob, and load each one. The returned report is
// populated even when the run comes back with ErrLoadFailed.
func (s *LoadService) Load(ctx context.Context, config xmlshred.LoadConfig) (*xmlshred.RunReport, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	def, err := CompileSchema(config.SchemaPath, config.RootElement, config.Options, s.logger)
	if err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(config.DocumentGlob)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid document glob: %v", xmlshred.ErrInvalidConfig, err)
	}
	sort.Strings(paths)

	report := &xmlshred.RunReport{}
	if len(paths) == 0 {
		s.logger.Info("No documents matched %s", config.DocumentGlob)
		return report, nil
	}
	s.logger.Verbose("Matched %d documents", len(paths))

	pool, err := s.connect(ctx, config.ConnectionString)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	var runID uuid.UUID
	if config.Audit {
		querier := db.NewPoolAdapter(pool)
		if err := s.auditStore.EnsureTables(ctx, querier); err != nil {
			return nil, err
		}
		runID, err = s.auditStore.BeginRun(ctx, querier, config.RootElement)
		if err != nil {
			return nil, err
		}
	}

	extractor := extract.New(def)
	rowLoader := loader.New(def, s.logger)

	for _, path := range paths {
		result := s.loadDocument(ctx, pool, extractor, rowLoader, path)
		report.Add(result)

		if result.Failed() {
			s.logger.Error("✗ %s: %v", path, result.Err)
		} else {
			s.logger.Info("✓ %s", path)
		}

		if config.Audit {
			if err := s.auditStore.RecordDocument(ctx, db.NewPoolAdapter(pool), runID, result); err != nil {
				s.logger.Error("Failed to record audit row for %s: %v", path, err)
			}
		}
	}

	if config.Audit {
		if err := s.auditStore.FinishRun(ctx, db.NewPoolAdapter(pool), runID, report); err != nil {
			s.logger.Error("Failed to record run completion: %v", err)
		}
	}

	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d documents failed", xmlshred.ErrLoadFailed, report.Failed, len(report.Documents))
	}
	return report, nil
}

func (s *LoadService) connect(ctx context.Context, connectionString string) (*pgxpool.Pool, error) {
	connConfig, err := db.ParseConnectionString(connectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xmlshred.ErrInvalidConfig, err)
	}
	if connConfig.AppName == "" {
		connConfig.AppName = "xmlshred"
	}
	return s.connectorFactory(connConfig).Connect(ctx)
}

// loadDocument parses, extracts, and inserts one document inside a single
// transaction. Transient failures retry the whole transaction; the rows of
// a failed attempt never become visible.
func (s *LoadService) loadDocument(ctx context.Context, pool *pgxpool.Pool, extractor *extract.Extractor, rowLoader *loader.RowLoader, path string) xmlshred.DocumentResult {
	result := xmlshred.DocumentResult{Path: path}

	root, err := s.parseAndExtract(extractor, path)
	if err != nil {
		result.Err = fmt.Errorf("%w: %s: %v", xmlshred.ErrDocumentFailed, path, err)
		return result
	}

	externalID := filepath.Base(path)

	err = s.executor.Execute(ctx, func(ctx context.Context) error {
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		counts, err := rowLoader.LoadDocument(ctx, db.NewTxAdapter(tx), root, externalID)
		if err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		result.RowCounts = counts
		return nil
	})
	if err != nil {
		result.Err = fmt.Errorf("%w: %s: %v", xmlshred.ErrDocumentFailed, path, err)
	}
	return result
}

func (s *LoadService) parseAndExtract(extractor *extract.Extractor, path string) (root *model.Row, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := extract.ParseDocument(f)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(doc)
}
