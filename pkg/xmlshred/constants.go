package xmlshred

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitSchemaError     = 12 // Schema set unusable (missing root element, unreadable files)
	ExitLoadFailed      = 13 // One or more documents failed to load
)

// Table-design limits. These mirror the fixed bounds of the relational
// mapping: identifier length is capped by the target store, and very wide
// schemas are split into extension tables rather than rejected.
const (
	// MaxIdentifierLength is the longest column name the generated model is
	// allowed to carry. Longer names are abbreviated, then truncated with a
	// stable hash suffix.
	MaxIdentifierLength = 128

	// MaxColumnsPerTable is the column-count ceiling per generated table.
	// Overflowing data columns are moved to numbered extension tables.
	MaxColumnsPerTable = 300

	// DefaultFlattenDepth is how many levels of nested singleton complex
	// types are folded into the parent table before collapsing the subtree
	// into a single opaque text column.
	DefaultFlattenDepth = 3

	// DefaultMaxRecursionDepth is the absolute ceiling on type-graph
	// recursion, independent of cycle detection.
	DefaultMaxRecursionDepth = 50
)

// Column and table naming conventions fixed by the model. External
// consumers (DDL emission, reporting) depend on these exact names.
const (
	// IdentityColumnName is the primary-key column every generated table carries.
	IdentityColumnName = "Id"

	// RepeatIndexColumnName is the zero-based ordinal column on repeating tables.
	RepeatIndexColumnName = "RepeatIndex"

	// ExternalIDColumnName is the optional correlation column on the root table,
	// populated by the caller rather than extracted from the document.
	ExternalIDColumnName = "ExternalId"

	// ExtensionTableSuffix is appended to a table name to form its overflow
	// extension tables: <Table>_Ext, <Table>_Ext2, ...
	ExtensionTableSuffix = "_Ext"
)

const (
	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// MaxErrorPreviewLength is the maximum number of characters shown in
	// per-document failure messages. This prevents overwhelming the console
	// with large statement errors.
	MaxErrorPreviewLength = 200
)
