// Package audit records schema versions and load runs in bookkeeping
// tables alongside the generated schema. The tables are created on demand
// and every write goes through the Querier interface, so recording works
// against a pool or inside a transaction.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// Store writes audit records for schema generation and document loads.
type Store struct {
	logger xmlshred.Logger
}

// NewStore creates an audit store. Panics if logger is nil.
func NewStore(logger xmlshred.Logger) *Store {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Store{logger: logger}
}

const createAuditTablesSQL = `
CREATE TABLE IF NOT EXISTS "xmlshred_schema_version" (
    "Id" BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    "RootElement" TEXT NOT NULL,
    "SchemaPath" TEXT NOT NULL,
    "Checksum" TEXT NOT NULL,
    "CreatedAt" TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE ("RootElement", "Checksum")
);
CREATE TABLE IF NOT EXISTS "xmlshred_run" (
    "RunId" UUID PRIMARY KEY,
    "RootElement" TEXT NOT NULL,
    "StartedAt" TIMESTAMPTZ NOT NULL,
    "FinishedAt" TIMESTAMPTZ,
    "DocumentsTotal" INTEGER NOT NULL DEFAULT 0,
    "DocumentsSucceeded" INTEGER NOT NULL DEFAULT 0,
    "DocumentsFailed" INTEGER NOT NULL DEFAULT 0,
    "TotalRows" BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS "xmlshred_run_document" (
    "Id" BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    "RunId" UUID NOT NULL REFERENCES "xmlshred_run" ("RunId"),
    "Path" TEXT NOT NULL,
    "Status" TEXT NOT NULL,
    "Rows" BIGINT NOT NULL DEFAULT 0,
    "Error" TEXT
);`

// EnsureTables creates the audit tables if they do not exist.
func (s *Store) EnsureTables(ctx context.Context, q xmlshred.Querier) error {
	if _, err := q.Exec(ctx, createAuditTablesSQL); err != nil {
		return fmt.Errorf("creating audit tables: %w", err)
	}
	return nil
}

// RecordSchemaVersion records a generated schema by its normalized DDL
// checksum. Re-recording an identical schema is a no-op.
func (s *Store) RecordSchemaVersion(ctx context.Context, q xmlshred.Querier, rootElement, schemaPath, ddl string) error {
	checksum := ChecksumDDL(ddl)
	_, err := q.Exec(ctx,
		`INSERT INTO "xmlshred_schema_version" ("RootElement", "SchemaPath", "Checksum")
		 VALUES ($1, $2, $3)
		 ON CONFLICT ("RootElement", "Checksum") DO NOTHING`,
		rootElement, schemaPath, checksum)
	if err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	s.logger.Verbose("Recorded schema version %s for root element %s", checksum[:12], rootElement)
	return nil
}

// BeginRun opens a run record and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, q xmlshred.Querier, rootElement string) (uuid.UUID, error) {
	runID := uuid.New()
	_, err := q.Exec(ctx,
		`INSERT INTO "xmlshred_run" ("RunId", "RootElement", "StartedAt") VALUES ($1, $2, $3)`,
		runID, rootElement, time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("recording run start: %w", err)
	}
	return runID, nil
}

// RecordDocument appends a per-document outcome to the run.
func (s *Store) RecordDocument(ctx context.Context, q xmlshred.Querier, runID uuid.UUID, result xmlshred.DocumentResult) error {
	status := "succeeded"
	var errText any
	if result.Failed() {
		status = "failed"
		errText = result.Err.Error()
	}
	rows := 0
	for _, n := range result.RowCounts {
		rows += n
	}
	_, err := q.Exec(ctx,
		`INSERT INTO "xmlshred_run_document" ("RunId", "Path", "Status", "Rows", "Error")
		 VALUES ($1, $2, $3, $4, $5)`,
		runID, result.Path, status, rows, errText)
	if err != nil {
		return fmt.Errorf("recording document outcome: %w", err)
	}
	return nil
}

// FinishRun closes the run record with the aggregated report.
func (s *Store) FinishRun(ctx context.Context, q xmlshred.Querier, runID uuid.UUID, report *xmlshred.RunReport) error {
	totalRows := 0
	for _, n := range report.TotalRows {
		totalRows += n
	}
	_, err := q.Exec(ctx,
		`UPDATE "xmlshred_run"
		 SET "FinishedAt" = $2, "DocumentsTotal" = $3, "DocumentsSucceeded" = $4,
		     "DocumentsFailed" = $5, "TotalRows" = $6
		 WHERE "RunId" = $1`,
		runID, time.Now().UTC(), len(report.Documents), report.Succeeded, report.Failed, totalRows)
	if err != nil {
		return fmt.Errorf("recording run completion: %w", err)
	}
	return nil
}
