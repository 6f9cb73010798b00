package fetcher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/rohmanhakim/scores-fixture/internal/metadata"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/rohmanhakim/scores-fixture/internal/storage"
	"github.com/rohmanhakim/scores-fixture/pkg/failure"
	"github.com/rohmanhakim/scores-fixture/pkg/hashutil"
	"github.com/rohmanhakim/scores-fixture/pkg/limiter"
	"github.com/rohmanhakim/scores-fixture/pkg/retry"
	"github.com/rohmanhakim/scores-fixture/pkg/timeutil"
	"github.com/rohmanhakim/scores-fixture/pkg/urlutil"
	"golang.org/x/net/publicsuffix"
)

/*
Responsibilities

- Skip resources already present in the working directory
- Perform HTTP requests with browser-like headers and timeouts
- Classify responses and retry the transient ones
- Persist successful JSON bodies through the storage sink

Fetch Semantics

- Only 2xx responses with a valid JSON body are stored
- Bodies are stored verbatim; the fetcher never interprets content
- Every call is recorded to metadata, skips included
*/

const (
	acceptHeader         = "application/json, text/plain, */*"
	acceptLanguageHeader = "en-US,en;q=0.9"
	defaultUserAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.5993.117 Safari/537.36"
)

type JsonFetcher struct {
	metadataSink   metadata.MetadataSink
	storageSink    storage.Sink
	rateLimiter    limiter.RateLimiter
	secureClient   *http.Client
	insecureClient *http.Client
}

// NewJsonFetcher builds a fetcher whose two clients share one cookie jar, so a
// session cookie set by the service is replayed whether TLS is verified or not.
func NewJsonFetcher(
	metadataSink metadata.MetadataSink,
	storageSink storage.Sink,
	rateLimiter limiter.RateLimiter,
) *JsonFetcher {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		jar = nil
	}

	insecureTransport := http.DefaultTransport.(*http.Transport).Clone()
	insecureTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	return &JsonFetcher{
		metadataSink:   metadataSink,
		storageSink:    storageSink,
		rateLimiter:    rateLimiter,
		secureClient:   &http.Client{Jar: jar},
		insecureClient: &http.Client{Jar: jar, Transport: insecureTransport},
	}
}

func (j *JsonFetcher) Fetch(
	ctx context.Context,
	identifier resource.Identifier,
	destDir string,
	opts Options,
) FetchResult {
	callerMethod := "JsonFetcher.Fetch"
	fetchUrl := urlutil.JoinName(opts.BaseURL, identifier.RemoteName())
	localName := identifier.LocalFilename()

	if !opts.ForceOverwrite {
		existing, found, err := j.storageSink.Locate(destDir, localName)
		if err != nil {
			fetchErr := &FetchError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseStorageFailure,
			}
			j.metadataSink.RecordFetch(fetchUrl.String(), 0, 0, string(StatusFailed), 0)
			j.recordFetchError(callerMethod, fetchUrl, fetchErr)
			return FetchResult{identifier: identifier, status: StatusFailed, err: fetchErr}
		}
		if found {
			j.metadataSink.RecordFetch(fetchUrl.String(), 0, 0, string(StatusSkippedExisting), 0)
			return FetchResult{
				identifier: identifier,
				localPath:  existing,
				status:     StatusSkippedExisting,
			}
		}
	}

	startTime := time.Now()
	var lastStatus int
	result := retry.Retry(ctx, opts.Retry, func() ([]byte, failure.ClassifiedError) {
		body, status, err := j.performFetch(ctx, fetchUrl, opts)
		lastStatus = status
		return body, err
	})
	duration := time.Since(startTime)

	retryCount := 0
	if result.Attempts() > 1 {
		retryCount = result.Attempts() - 1
	}

	if result.IsFailure() {
		j.metadataSink.RecordFetch(fetchUrl.String(), lastStatus, duration, string(StatusFailed), retryCount)
		j.recordFetchError(callerMethod, fetchUrl, result.Err())
		return FetchResult{
			identifier: identifier,
			status:     StatusFailed,
			err:        result.Err(),
			httpStatus: lastStatus,
			attempts:   result.Attempts(),
		}
	}

	body := result.Value()
	writeResult, writeErr := j.storageSink.Write(destDir, localName, body, hashutil.HashAlgoBLAKE3)
	if writeErr != nil {
		fetchErr := &FetchError{
			Message:   writeErr.Error(),
			Retryable: false,
			Cause:     ErrCauseStorageFailure,
		}
		j.metadataSink.RecordFetch(fetchUrl.String(), lastStatus, duration, string(StatusFailed), retryCount)
		j.recordFetchError(callerMethod, fetchUrl, fetchErr)
		return FetchResult{
			identifier: identifier,
			status:     StatusFailed,
			err:        fetchErr,
			httpStatus: lastStatus,
			attempts:   result.Attempts(),
		}
	}

	j.metadataSink.RecordFetch(fetchUrl.String(), lastStatus, duration, string(StatusDownloaded), retryCount)
	return FetchResult{
		identifier:  identifier,
		localPath:   writeResult.Path(),
		status:      StatusDownloaded,
		contentHash: writeResult.ContentHash(),
		sizeByte:    writeResult.Size(),
		httpStatus:  lastStatus,
		attempts:    result.Attempts(),
	}
}

func (j *JsonFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	// exhausted retries wrap the last FetchError
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		cause = mapFetchErrorToMetadataCause(fetchError)
	}
	j.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			metadata.NewAttr(metadata.AttrHost, fetchUrl.Host),
		},
	)
}

func (j *JsonFetcher) client(verifyTLS bool) *http.Client {
	if verifyTLS {
		return j.secureClient
	}
	return j.insecureClient
}

// performFetch runs a single attempt and returns the body, the response
// status (0 without a response) and a classified error.
func (j *JsonFetcher) performFetch(ctx context.Context, fetchUrl url.URL, opts Options) ([]byte, int, failure.ClassifiedError) {
	host := fetchUrl.Host
	if err := timeutil.Sleep(ctx, j.rateLimiter.ResolveDelay(host)); err != nil {
		return nil, 0, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseCanceled,
		}
	}

	reqCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return nil, 0, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	for key, value := range requestHeaders(opts) {
		req.Header.Set(key, value)
	}

	resp, err := j.client(opts.VerifyTLS).Do(req)
	j.rateLimiter.MarkLastFetchAsNow(host)
	if err != nil {
		return nil, 0, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if fetchErr := classifyStatus(resp.StatusCode); fetchErr != nil {
		if fetchErr.Cause == ErrCauseRequestTooMany || fetchErr.Cause == ErrCauseRequest5xx {
			j.rateLimiter.Backoff(host)
		}
		return nil, resp.StatusCode, fetchErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, resp.StatusCode, classifyTransportError(ctx, err)
		}
		return nil, resp.StatusCode, &FetchError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}

	if !json.Valid(body) {
		return nil, resp.StatusCode, &FetchError{
			Message:   fmt.Sprintf("body of %d bytes is not JSON (content type %q)", len(body), resp.Header.Get("Content-Type")),
			Retryable: false,
			Cause:     ErrCauseContentInvalid,
		}
	}

	j.rateLimiter.ResetBackoff(host)
	return body, resp.StatusCode, nil
}

func classifyTransportError(ctx context.Context, err error) *FetchError {
	switch {
	case ctx.Err() != nil:
		// the caller gave up; another attempt cannot succeed
		return &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseCanceled,
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	default:
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return &FetchError{
				Message:   fmt.Sprintf("request timed out: %v", err),
				Retryable: true,
				Cause:     ErrCauseTimeout,
			}
		}
		return &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
}

func classifyStatus(statusCode int) *FetchError {
	switch {
	case statusCode >= 500:
		return &FetchError{
			Message:   fmt.Sprintf("server error: %d", statusCode),
			Retryable: true,
			Cause:     ErrCauseRequest5xx,
		}

	case statusCode == http.StatusTooManyRequests:
		return &FetchError{
			Message:   "rate limited (429)",
			Retryable: true,
			Cause:     ErrCauseRequestTooMany,
		}

	case statusCode == http.StatusNotFound:
		return &FetchError{
			Message:   "resource not found (404)",
			Retryable: false,
			Cause:     ErrCauseNotFound,
		}

	case statusCode == http.StatusForbidden || statusCode == http.StatusUnauthorized:
		return &FetchError{
			Message:   fmt.Sprintf("access forbidden (%d)", statusCode),
			Retryable: false,
			Cause:     ErrCauseRequestForbidden,
		}

	case statusCode >= 400:
		return &FetchError{
			Message:   fmt.Sprintf("client error: %d", statusCode),
			Retryable: false,
			Cause:     ErrCauseRequest4xx,
		}

	case statusCode >= 300:
		// http.Client follows redirects; landing here means it gave up
		return &FetchError{
			Message:   fmt.Sprintf("redirect error: %d", statusCode),
			Retryable: false,
			Cause:     ErrCauseRedirectLimitExceeded,
		}

	case statusCode < 200:
		return &FetchError{
			Message:   fmt.Sprintf("unexpected status: %d", statusCode),
			Retryable: false,
			Cause:     ErrCauseRequest4xx,
		}
	}
	return nil
}

func requestHeaders(opts Options) map[string]string {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	referer := opts.Referer
	if referer == "" {
		referer = opts.BaseURL.String()
	}

	headers := map[string]string{
		"User-Agent":      userAgent,
		"Accept":          acceptHeader,
		"Accept-Language": acceptLanguageHeader,
		"Referer":         referer,
	}
	for key, value := range opts.Headers {
		headers[key] = value
	}
	return headers
}
