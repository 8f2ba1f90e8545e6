package xmlshred_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, xmlshred.ExitSuccess},
		{"general error", errors.New("something went wrong"), xmlshred.ExitGeneralError},
		{"invalid config", xmlshred.ErrInvalidConfig, xmlshred.ExitConfigError},
		{"schema not found", xmlshred.ErrSchemaNotFound, xmlshred.ExitSchemaError},
		{"root element not found", xmlshred.ErrRootElementNotFound, xmlshred.ExitSchemaError},
		{"unnamed root element", xmlshred.ErrUnnamedRootElement, xmlshred.ExitSchemaError},
		{"apply failed", xmlshred.ErrApplyFailed, xmlshred.ExitSchemaError},
		{"connection failed", xmlshred.ErrConnectionFailed, xmlshred.ExitConnectionError},
		{"load failed", xmlshred.ErrLoadFailed, xmlshred.ExitLoadFailed},
		{"document failed", xmlshred.ErrDocumentFailed, xmlshred.ExitLoadFailed},
		{"connection refused pattern", errors.New("dial tcp: connection refused"), xmlshred.ExitConnectionError},
		{"no such host pattern", errors.New("lookup db.internal: no such host"), xmlshred.ExitConnectionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := xmlshred.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForError_WrappedSentinels(t *testing.T) {
	err := fmt.Errorf("compiling schema: %w", xmlshred.ErrRootElementNotFound)
	if got := xmlshred.ExitCodeForError(err); got != xmlshred.ExitSchemaError {
		t.Errorf("wrapped sentinel: got %d, want %d", got, xmlshred.ExitSchemaError)
	}

	err = fmt.Errorf("run finished: %w: 2 of 5 documents failed", xmlshred.ErrLoadFailed)
	if got := xmlshred.ExitCodeForError(err); got != xmlshred.ExitLoadFailed {
		t.Errorf("wrapped load failure: got %d, want %d", got, xmlshred.ExitLoadFailed)
	}
}
