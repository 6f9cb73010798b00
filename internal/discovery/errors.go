package discovery

import (
	"fmt"

	"github.com/rohmanhakim/scores-fixture/internal/metadata"
	"github.com/rohmanhakim/scores-fixture/pkg/failure"
)

type DiscoveryErrorCause string

const (
	ErrCauseRootUnreachable DiscoveryErrorCause = "root unreachable"
	ErrCauseRootUnparseable DiscoveryErrorCause = "root unparseable"
	ErrCauseRootMissing     DiscoveryErrorCause = "root missing from working directory"
	ErrCauseRootReadFailure DiscoveryErrorCause = "root read failure"
	ErrCauseInvalidResource DiscoveryErrorCause = "invalid resource identifier"
)

// DiscoveryError aborts the run: without the root document there is nothing
// to discover.
type DiscoveryError struct {
	Message string
	Cause   DiscoveryErrorCause
	// Root is the local name of the root document involved.
	Root string
	// Err is the underlying fetch, storage or parse error, if any.
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery error: %s: %s", e.Cause, e.Message)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

func (e *DiscoveryError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *DiscoveryError) IsRetryable() bool {
	return false
}

// mapDiscoveryErrorToMetadataCause maps discovery-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapDiscoveryErrorToMetadataCause(err *DiscoveryError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseRootUnreachable:
		return metadata.CauseNetworkFailure
	case ErrCauseRootUnparseable:
		return metadata.CauseContentInvalid
	case ErrCauseRootMissing:
		return metadata.CauseContentMissing
	case ErrCauseRootReadFailure:
		return metadata.CauseStorageFailure
	case ErrCauseInvalidResource:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
