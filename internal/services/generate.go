// Package services orchestrates the two workflows: schema generation from
// an XSD and document loading. Services receive their collaborators at
// construction and stay free of CLI concerns.
package services

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vvka-141/xmlshred/internal/audit"
	"github.com/vvka-141/xmlshred/internal/compiler"
	"github.com/vvka-141/xmlshred/internal/db"
	"github.com/vvka-141/xmlshred/internal/ddl"
	"github.com/vvka-141/xmlshred/internal/model"
	"github.com/vvka-141/xmlshred/internal/xsd"
	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// ConnectorFactory builds a connector for a parsed connection config.
// Injected so tests can substitute a fake without a live server.
type ConnectorFactory func(*xmlshred.ConnectionConfig) xmlshred.Connector

// GenerateService compiles an XSD into a relational schema and emits the
// DDL, optionally applying it to a database.
type GenerateService struct {
	connectorFactory ConnectorFactory
	logger           xmlshred.Logger
	auditStore       *audit.Store
	out              io.Writer
}

// NewGenerateService creates a generation service with all dependencies
// injected. Panics on nil dependencies; these are programmer errors that
// should fail at startup rather than mid-run.
func NewGenerateService(
	connectorFactory ConnectorFactory,
	logger xmlshred.Logger,
	auditStore *audit.Store,
	out io.Writer,
) *GenerateService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if auditStore == nil {
		panic("auditStore cannot be nil")
	}
	if out == nil {
		panic("out cannot be nil")
	}
	return &GenerateService{
		connectorFactory: connectorFactory,
		logger:           logger,
		auditStore:       auditStore,
		out:              out,
	}
}

// Generate runs the full generation workflow: compile the schema, emit
// DDL to the configured destination, and apply it when requested.
func (s *GenerateService) Generate(ctx context.Context, config xmlshred.GenerateConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	def, err := CompileSchema(config.SchemaPath, config.RootElement, config.Options, s.logger)
	if err != nil {
		return err
	}

	statements := ddl.Emit(def)
	s.logger.Verbose("Compiled %d tables from root element '%s'", len(def.Tables), config.RootElement)

	if err := s.writeDDL(config.OutputPath, statements); err != nil {
		return err
	}

	if config.Apply {
		if err := s.applyDDL(ctx, config, statements); err != nil {
			return err
		}
		s.logger.Info("✓ Schema applied to database")
	}

	return nil
}

// CompileSchema loads a schema set, builds the type directory, and
// compiles the table definition for the given root element. Shared by
// generation and loading so both workflows see the same schema.
func CompileSchema(schemaPath, rootElement string, opts xmlshred.CompileOptions, logger xmlshred.Logger) (*model.Definition, error) {
	docs, err := xsd.LoadSet(schemaPath, logger)
	if err != nil {
		return nil, err
	}

	dir := xsd.NewDirectory(docs, logger)
	builder := compiler.NewBuilder(dir, logger, opts)
	return builder.Build(rootElement)
}

func (s *GenerateService) writeDDL(outputPath, statements string) error {
	if outputPath == "" {
		_, err := io.WriteString(s.out, statements)
		return err
	}
	if err := os.WriteFile(outputPath, []byte(statements), 0o644); err != nil {
		return fmt.Errorf("writing DDL to %s: %w", outputPath, err)
	}
	s.logger.Info("DDL written to %s", outputPath)
	return nil
}

func (s *GenerateService) applyDDL(ctx context.Context, config xmlshred.GenerateConfig, statements string) error {
	connConfig, err := db.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return fmt.Errorf("%w: %v", xmlshred.ErrInvalidConfig, err)
	}
	if connConfig.AppName == "" {
		connConfig.AppName = "xmlshred"
	}

	pool, err := s.connectorFactory(connConfig).Connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", xmlshred.ErrConnectionFailed, err)
	}
	defer tx.Rollback(ctx)

	querier := db.NewTxAdapter(tx)
	if _, err := querier.Exec(ctx, statements); err != nil {
		return fmt.Errorf("%w: applying DDL: %v", xmlshred.ErrApplyFailed, err)
	}
	if err := s.auditStore.EnsureTables(ctx, querier); err != nil {
		return err
	}
	if err := s.auditStore.RecordSchemaVersion(ctx, querier, config.RootElement, config.SchemaPath, statements); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing schema: %v", xmlshred.ErrApplyFailed, err)
	}
	return nil
}
