package fetcher

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/rohmanhakim/scores-fixture/pkg/failure"
	"github.com/rohmanhakim/scores-fixture/pkg/retry"
)

// HTTP boundary

type Options struct {
	VerifyTLS      bool
	ForceOverwrite bool
	BaseURL        url.URL
	// Headers are applied last and win over the browser-like defaults.
	Headers   map[string]string
	UserAgent string
	// Referer defaults to the base URL when empty.
	Referer string
	Timeout time.Duration
	Retry   retry.RetryParam
}

type Status string

const (
	StatusDownloaded      Status = "downloaded"
	StatusSkippedExisting Status = "skipped_existing"
	StatusFailed          Status = "failed"
)

type FetchResult struct {
	identifier  resource.Identifier
	localPath   string
	status      Status
	err         failure.ClassifiedError
	contentHash string
	sizeByte    int
	httpStatus  int
	attempts    int
}

func (f *FetchResult) Identifier() resource.Identifier {
	return f.identifier
}

func (f *FetchResult) LocalPath() string {
	return f.localPath
}

func (f *FetchResult) Status() Status {
	return f.status
}

// Err is set only when Status is StatusFailed.
func (f *FetchResult) Err() failure.ClassifiedError {
	return f.err
}

func (f *FetchResult) ContentHash() string {
	return f.contentHash
}

func (f *FetchResult) SizeByte() int {
	return f.sizeByte
}

// HTTPStatus is the status of the last response, 0 when no response arrived.
func (f *FetchResult) HTTPStatus() int {
	return f.httpStatus
}

func (f *FetchResult) Attempts() int {
	return f.attempts
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	identifier resource.Identifier,
	localPath string,
	status Status,
	err failure.ClassifiedError,
) FetchResult {
	return FetchResult{
		identifier: identifier,
		localPath:  localPath,
		status:     status,
		err:        err,
	}
}
