package fetcher

import (
	"context"

	"github.com/rohmanhakim/scores-fixture/internal/config"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/rohmanhakim/scores-fixture/pkg/retry"
	"github.com/rohmanhakim/scores-fixture/pkg/timeutil"
)

// Fetcher downloads one resource into destDir. Failure is reported through
// FetchResult, never as a panic or a separate error.
type Fetcher interface {
	Fetch(
		ctx context.Context,
		identifier resource.Identifier,
		destDir string,
		opts Options,
	) FetchResult
}

func NewOptions(cfg config.Config) Options {
	backoff := timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	)
	return Options{
		VerifyTLS:      cfg.VerifyTLS(),
		ForceOverwrite: cfg.ForceOverwrite(),
		BaseURL:        cfg.BaseURL(),
		Headers:        cfg.Headers(),
		UserAgent:      cfg.UserAgent(),
		Referer:        cfg.Referer(),
		Timeout:        cfg.Timeout(),
		Retry: retry.NewRetryParam(
			cfg.Jitter(),
			cfg.RandomSeed(),
			cfg.MaxAttempt(),
			backoff,
		),
	}
}
