package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `schema: schemas/orders.xsd
root_element: Order
connection: postgresql://localhost:5432/orders
documents: "inbox/*.xml"
output: schema.sql
audit: true
compile:
  flatten_depth: 5
  max_columns: 200
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Schema != "schemas/orders.xsd" {
		t.Errorf("Schema = %q", cfg.Schema)
	}
	if cfg.RootElement != "Order" {
		t.Errorf("RootElement = %q", cfg.RootElement)
	}
	if cfg.Connection != "postgresql://localhost:5432/orders" {
		t.Errorf("Connection = %q", cfg.Connection)
	}
	if cfg.Documents != "inbox/*.xml" {
		t.Errorf("Documents = %q", cfg.Documents)
	}
	if cfg.Output != "schema.sql" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if !cfg.Audit {
		t.Error("Audit = false, want true")
	}
	if cfg.Compile.FlattenDepth != 5 {
		t.Errorf("Compile.FlattenDepth = %d", cfg.Compile.FlattenDepth)
	}
	if cfg.Compile.MaxColumns != 200 {
		t.Errorf("Compile.MaxColumns = %d", cfg.Compile.MaxColumns)
	}
	if cfg.Compile.MaxRecursionDepth != 0 {
		t.Errorf("unset limit should stay zero, got %d", cfg.Compile.MaxRecursionDepth)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("err = %v, want ErrConfigNotFound", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "schema: [unclosed")

	if _, err := Load(dir); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
