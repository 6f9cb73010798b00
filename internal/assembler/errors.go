package assembler

import (
	"fmt"

	"github.com/rohmanhakim/scores-fixture/internal/metadata"
	"github.com/rohmanhakim/scores-fixture/pkg/failure"
)

type AssemblyErrorCause string

const (
	// unit gaps, the unit is skipped and the run goes on
	ErrCauseFragmentMissing     AssemblyErrorCause = "result fragment missing"
	ErrCauseFragmentUnreadable  AssemblyErrorCause = "result fragment unreadable"
	ErrCauseFragmentUnparseable AssemblyErrorCause = "result fragment unparseable"
	ErrCauseInvalidResource     AssemblyErrorCause = "invalid resource identifier"

	ErrCauseTemplateUnreadable AssemblyErrorCause = "template unreadable"
	ErrCauseTemplateInvalid    AssemblyErrorCause = "template invalid"
	ErrCauseUnitNotFound       AssemblyErrorCause = "no unit matches the filter"
	ErrCauseMergeFailure       AssemblyErrorCause = "merge failure"
	ErrCauseOutputWrite        AssemblyErrorCause = "output write failure"
)

type AssemblyError struct {
	Message string
	Cause   AssemblyErrorCause
	Unit    string
	Path    string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly error: %s: %s", e.Cause, e.Message)
}

// Severity is recoverable for unit gaps and fatal for everything else.
func (e *AssemblyError) Severity() failure.Severity {
	if e.IsGap() {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *AssemblyError) IsRetryable() bool {
	return false
}

// IsGap reports whether the error only costs the output one unit.
func (e *AssemblyError) IsGap() bool {
	switch e.Cause {
	case ErrCauseFragmentMissing, ErrCauseFragmentUnreadable, ErrCauseFragmentUnparseable, ErrCauseInvalidResource:
		return true
	default:
		return false
	}
}

// mapAssemblyErrorToMetadataCause maps assembler-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapAssemblyErrorToMetadataCause(err *AssemblyError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseFragmentMissing, ErrCauseUnitNotFound:
		return metadata.CauseContentMissing
	case ErrCauseFragmentUnparseable, ErrCauseTemplateInvalid:
		return metadata.CauseContentInvalid
	case ErrCauseFragmentUnreadable, ErrCauseTemplateUnreadable, ErrCauseOutputWrite:
		return metadata.CauseStorageFailure
	case ErrCauseInvalidResource, ErrCauseMergeFailure:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
