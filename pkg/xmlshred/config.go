package xmlshred

import (
	"errors"
	"fmt"
)

// CompileOptions tune the table-design limits of the schema compiler.
// Zero values mean "use the package defaults".
type CompileOptions struct {
	// FlattenDepth is how deep nested singleton complex types are folded
	// into the parent table before degrading to an opaque text column.
	FlattenDepth int

	// MaxRecursionDepth is the absolute recursion ceiling for the type walk.
	MaxRecursionDepth int

	// MaxColumns is the per-table column ceiling before overflow splitting.
	MaxColumns int

	// MaxIdentifier is the longest column name the model may carry.
	MaxIdentifier int
}

// WithDefaults returns a copy with zero fields replaced by package defaults.
func (o CompileOptions) WithDefaults() CompileOptions {
	if o.FlattenDepth <= 0 {
		o.FlattenDepth = DefaultFlattenDepth
	}
	if o.MaxRecursionDepth <= 0 {
		o.MaxRecursionDepth = DefaultMaxRecursionDepth
	}
	if o.MaxColumns <= 0 {
		o.MaxColumns = MaxColumnsPerTable
	}
	if o.MaxIdentifier <= 0 {
		o.MaxIdentifier = MaxIdentifierLength
	}
	return o
}

// GenerateConfig contains all parameters needed to compile a schema set into
// a table design and emit its DDL.
type GenerateConfig struct {
	// SchemaPath is the entry .xsd file. Includes and imports are followed
	// relative to it.
	SchemaPath string

	// RootElement is the local name of the top-level element to compile.
	RootElement string

	// OutputPath receives the emitted DDL. Empty writes to stdout.
	OutputPath string

	// Apply executes the emitted DDL against the target database and
	// records the schema version in the audit registry.
	Apply bool

	// ConnectionString is the PostgreSQL connection string (URI or
	// key=value format). Required only when Apply is set.
	ConnectionString string

	// Options tune the compiler limits.
	Options CompileOptions

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the GenerateConfig has all required fields.
// It returns a multi-error if multiple validation failures occur.
func (c *GenerateConfig) Validate() error {
	var errs []error

	if c.SchemaPath == "" {
		errs = append(errs, fmt.Errorf("SchemaPath is required: %w", ErrInvalidConfig))
	}
	if c.RootElement == "" {
		errs = append(errs, fmt.Errorf("RootElement is required: %w", ErrInvalidConfig))
	}
	if c.Apply && c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required with Apply: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// LoadConfig contains all parameters needed to shred a batch of XML
// documents into the generated tables.
type LoadConfig struct {
	// SchemaPath is the entry .xsd file used to compile the table design.
	SchemaPath string

	// RootElement is the local name of the top-level element to compile.
	RootElement string

	// DocumentGlob selects the XML instance documents to load.
	DocumentGlob string

	// ConnectionString is the PostgreSQL connection string (URI or
	// key=value format).
	ConnectionString string

	// Audit records the run and per-document outcomes in the registry
	// tables when set.
	Audit bool

	// Options tune the compiler limits. They must match the options the
	// schema was generated with, or extraction will not line up with the
	// tables in the store.
	Options CompileOptions

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the LoadConfig has all required fields.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.SchemaPath == "" {
		errs = append(errs, fmt.Errorf("SchemaPath is required: %w", ErrInvalidConfig))
	}
	if c.RootElement == "" {
		errs = append(errs, fmt.Errorf("RootElement is required: %w", ErrInvalidConfig))
	}
	if c.DocumentGlob == "" {
		errs = append(errs, fmt.Errorf("DocumentGlob is required: %w", ErrInvalidConfig))
	}
	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
