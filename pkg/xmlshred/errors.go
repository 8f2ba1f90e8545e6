package xmlshred

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := svc.Run(ctx, config)
//	if errors.Is(err, xmlshred.ErrRootElementNotFound) {
//	    // The schema set has no usable entry point
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSchemaNotFound indicates a schema file could not be read.
	ErrSchemaNotFound = errors.New("schema file not found")

	// ErrRootElementNotFound indicates the schema set declares no matching
	// top-level element. Table generation cannot proceed without one.
	ErrRootElementNotFound = errors.New("root element not found")

	// ErrUnnamedRootElement indicates the resolved root element carries no name.
	ErrUnnamedRootElement = errors.New("root element has no name")

	// ErrApplyFailed indicates generated DDL could not be applied to the
	// target database.
	ErrApplyFailed = errors.New("schema apply failed")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrLoadFailed indicates one or more documents failed during a load run.
	ErrLoadFailed = errors.New("load failed")

	// ErrDocumentFailed indicates a single document's insert sequence failed
	// and was rolled back.
	ErrDocumentFailed = errors.New("document failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrSchemaNotFound),
		errors.Is(err, ErrRootElementNotFound),
		errors.Is(err, ErrUnnamedRootElement),
		errors.Is(err, ErrApplyFailed):
		return ExitSchemaError
	case errors.Is(err, ErrLoadFailed), errors.Is(err, ErrDocumentFailed):
		return ExitLoadFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	// Check for common connection error patterns
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
