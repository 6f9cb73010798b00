package document

import (
	"fmt"

	"github.com/rohmanhakim/scores-fixture/pkg/failure"
)

type ParseErrorCause string

const (
	ErrCauseInvalidJSON   ParseErrorCause = "invalid json"
	ErrCauseMissingEvent  ParseErrorCause = "missing event object"
	ErrCauseInvalidResult ParseErrorCause = "invalid result document"
)

// ParseError is never retryable: the same bytes always fail the same way.
type ParseError struct {
	Message string
	Cause   ParseErrorCause
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("document error: %s: %s", e.Cause, e.Message)
}

func (e *ParseError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *ParseError) IsRetryable() bool {
	return false
}
