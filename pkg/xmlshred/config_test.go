package xmlshred_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

func TestCompileOptions_WithDefaults(t *testing.T) {
	t.Run("zero value picks up all defaults", func(t *testing.T) {
		opts := xmlshred.CompileOptions{}.WithDefaults()
		if opts.FlattenDepth != xmlshred.DefaultFlattenDepth {
			t.Errorf("FlattenDepth = %d, want %d", opts.FlattenDepth, xmlshred.DefaultFlattenDepth)
		}
		if opts.MaxRecursionDepth != xmlshred.DefaultMaxRecursionDepth {
			t.Errorf("MaxRecursionDepth = %d, want %d", opts.MaxRecursionDepth, xmlshred.DefaultMaxRecursionDepth)
		}
		if opts.MaxColumns != xmlshred.MaxColumnsPerTable {
			t.Errorf("MaxColumns = %d, want %d", opts.MaxColumns, xmlshred.MaxColumnsPerTable)
		}
		if opts.MaxIdentifier != xmlshred.MaxIdentifierLength {
			t.Errorf("MaxIdentifier = %d, want %d", opts.MaxIdentifier, xmlshred.MaxIdentifierLength)
		}
	})

	t.Run("explicit values are preserved", func(t *testing.T) {
		opts := xmlshred.CompileOptions{FlattenDepth: 5, MaxColumns: 10}.WithDefaults()
		if opts.FlattenDepth != 5 {
			t.Errorf("FlattenDepth = %d, want 5", opts.FlattenDepth)
		}
		if opts.MaxColumns != 10 {
			t.Errorf("MaxColumns = %d, want 10", opts.MaxColumns)
		}
		if opts.MaxRecursionDepth != xmlshred.DefaultMaxRecursionDepth {
			t.Errorf("MaxRecursionDepth = %d, want default", opts.MaxRecursionDepth)
		}
	})
}

func TestGenerateConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  xmlshred.GenerateConfig
		wantErr bool
	}{
		{
			name:    "valid minimal",
			config:  xmlshred.GenerateConfig{SchemaPath: "order.xsd", RootElement: "Order"},
			wantErr: false,
		},
		{
			name:    "missing schema path",
			config:  xmlshred.GenerateConfig{RootElement: "Order"},
			wantErr: true,
		},
		{
			name:    "missing root element",
			config:  xmlshred.GenerateConfig{SchemaPath: "order.xsd"},
			wantErr: true,
		},
		{
			name:    "apply without connection string",
			config:  xmlshred.GenerateConfig{SchemaPath: "order.xsd", RootElement: "Order", Apply: true},
			wantErr: true,
		},
		{
			name: "apply with connection string",
			config: xmlshred.GenerateConfig{
				SchemaPath: "order.xsd", RootElement: "Order",
				Apply: true, ConnectionString: "postgresql://localhost/db",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, xmlshred.ErrInvalidConfig) {
				t.Errorf("validation error should wrap ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadConfig_Validate_CollectsAllFailures(t *testing.T) {
	config := xmlshred.LoadConfig{}
	err := config.Validate()
	if err == nil {
		t.Fatal("expected error for empty config")
	}

	for _, want := range []string{"SchemaPath", "RootElement", "DocumentGlob", "ConnectionString"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err.Error(), want)
		}
	}
}
