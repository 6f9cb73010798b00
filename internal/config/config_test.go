package config_test

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/scores-fixture/internal/config"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) resource.Context {
	t.Helper()
	rctx, err := resource.NewContext("OG2024", "FBLMTEAM11", "ENG")
	require.NoError(t, err)
	return rctx
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestWithDefault(t *testing.T) {
	cfg, err := config.WithDefault(testContext(t)).Build()
	require.NoError(t, err)

	assert.Equal(t, "OG2024", cfg.Context().Comp())
	assert.Equal(t, "FBLMTEAM11", cfg.Context().Event())
	assert.Equal(t, "ENG", cfg.Context().Lang())

	baseURL := cfg.BaseURL()
	assert.Equal(t, config.DefaultBaseURL, baseURL.String())
	assert.True(t, cfg.VerifyTLS())
	assert.False(t, cfg.ForceOverwrite())
	assert.Equal(t, config.DefaultUserAgent, cfg.UserAgent())
	assert.Empty(t, cfg.Referer())
	assert.Empty(t, cfg.Headers())
	assert.Equal(t, 30*time.Second, cfg.Timeout())

	assert.Equal(t, 4, cfg.Concurrency())
	assert.Equal(t, time.Duration(0), cfg.BaseDelay())
	assert.Equal(t, time.Duration(0), cfg.Jitter())
	assert.NotZero(t, cfg.RandomSeed())
	assert.Equal(t, 3, cfg.MaxAttempt())
	assert.Equal(t, time.Second, cfg.BackoffInitialDuration())
	assert.Equal(t, 1.5, cfg.BackoffMultiplier())
	assert.Equal(t, 10*time.Second, cfg.BackoffMaxDuration())

	assert.Equal(t, "tmp", cfg.TmpDir())
	assert.Empty(t, cfg.TemplatePath())
	assert.Equal(t, "example.json", cfg.OutputPath())
	assert.False(t, cfg.IncludeSources())
	assert.Empty(t, cfg.MetricsFile())
}

func TestBuilderChain(t *testing.T) {
	baseURL := url.URL{Scheme: "http", Host: "127.0.0.1:8080", Path: "/data"}
	other, err := resource.NewContext("OG2028", "BKBMTEAM5", "FRA")
	require.NoError(t, err)

	cfg, err := config.WithDefault(testContext(t)).
		WithContext(other).
		WithBaseURL(baseURL).
		WithVerifyTLS(false).
		WithForceOverwrite(true).
		WithUserAgent("scores-fixture-test").
		WithReferer("https://olympics.com/").
		WithHeaders(map[string]string{"X-Trace": "1"}).
		WithTimeout(5 * time.Second).
		WithConcurrency(8).
		WithBaseDelay(100 * time.Millisecond).
		WithJitter(10 * time.Millisecond).
		WithRandomSeed(42).
		WithMaxAttempt(5).
		WithBackoffInitialDuration(50 * time.Millisecond).
		WithBackoffMultiplier(3).
		WithBackoffMaxDuration(time.Second).
		WithTmpDir("cache").
		WithTemplatePath("endpoint-template.json").
		WithOutputPath("out.json").
		WithIncludeSources(true).
		WithMetricsFile("run.prom").
		Build()
	require.NoError(t, err)

	assert.Equal(t, other, cfg.Context())
	assert.Equal(t, baseURL, cfg.BaseURL())
	assert.False(t, cfg.VerifyTLS())
	assert.True(t, cfg.ForceOverwrite())
	assert.Equal(t, "scores-fixture-test", cfg.UserAgent())
	assert.Equal(t, "https://olympics.com/", cfg.Referer())
	assert.Equal(t, map[string]string{"X-Trace": "1"}, cfg.Headers())
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, 8, cfg.Concurrency())
	assert.Equal(t, 100*time.Millisecond, cfg.BaseDelay())
	assert.Equal(t, 10*time.Millisecond, cfg.Jitter())
	assert.Equal(t, int64(42), cfg.RandomSeed())
	assert.Equal(t, 5, cfg.MaxAttempt())
	assert.Equal(t, 50*time.Millisecond, cfg.BackoffInitialDuration())
	assert.Equal(t, 3.0, cfg.BackoffMultiplier())
	assert.Equal(t, time.Second, cfg.BackoffMaxDuration())
	assert.Equal(t, "cache", cfg.TmpDir())
	assert.Equal(t, "endpoint-template.json", cfg.TemplatePath())
	assert.Equal(t, "out.json", cfg.OutputPath())
	assert.True(t, cfg.IncludeSources())
	assert.Equal(t, "run.prom", cfg.MetricsFile())
}

func TestHeadersAreCopied(t *testing.T) {
	cfg, err := config.WithDefault(testContext(t)).
		WithHeaders(map[string]string{"A": "1"}).
		Build()
	require.NoError(t, err)

	headers := cfg.Headers()
	headers["A"] = "changed"
	assert.Equal(t, "1", cfg.Headers()["A"])
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		builder func(*config.Config) *config.Config
	}{
		{
			name:    "missing context",
			builder: func(c *config.Config) *config.Config { return c.WithContext(resource.Context{}) },
		},
		{
			name:    "relative base URL",
			builder: func(c *config.Config) *config.Config { return c.WithBaseURL(url.URL{Path: "data"}) },
		},
		{
			name:    "zero attempts",
			builder: func(c *config.Config) *config.Config { return c.WithMaxAttempt(0) },
		},
		{
			name:    "negative timeout",
			builder: func(c *config.Config) *config.Config { return c.WithTimeout(-time.Second) },
		},
		{
			name:    "shrinking backoff",
			builder: func(c *config.Config) *config.Config { return c.WithBackoffMultiplier(0.5) },
		},
		{
			name:    "empty tmp dir",
			builder: func(c *config.Config) *config.Config { return c.WithTmpDir("") },
		},
		{
			name:    "empty output path",
			builder: func(c *config.Config) *config.Config { return c.WithOutputPath("") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder(config.WithDefault(testContext(t))).Build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestWithConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
comp: OG2028
event: BKBMTEAM5
lang: FRA
base_url: http://localhost:9000/data/
insecure: true
force: true
user_agent: fixture-bot
headers:
  X-Api-Key: secret
timeout: 5s
concurrency: 2
base_delay: 250ms
jitter: 50ms
random_seed: 7
max_attempt: 5
backoff_initial: 100ms
backoff_multiplier: 2
backoff_max: 2s
tmp_dir: cache
template: endpoint-template.json
out: fixture.json
include_sources: true
metrics_file: run.prom
`)

	cfg, err := config.WithConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "OG2028", cfg.Context().Comp())
	assert.Equal(t, "BKBMTEAM5", cfg.Context().Event())
	assert.Equal(t, "FRA", cfg.Context().Lang())
	baseURL := cfg.BaseURL()
	assert.Equal(t, "http://localhost:9000/data", baseURL.String())
	assert.False(t, cfg.VerifyTLS())
	assert.True(t, cfg.ForceOverwrite())
	assert.Equal(t, "fixture-bot", cfg.UserAgent())
	assert.Equal(t, map[string]string{"X-Api-Key": "secret"}, cfg.Headers())
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, 2, cfg.Concurrency())
	assert.Equal(t, 250*time.Millisecond, cfg.BaseDelay())
	assert.Equal(t, 50*time.Millisecond, cfg.Jitter())
	assert.Equal(t, int64(7), cfg.RandomSeed())
	assert.Equal(t, 5, cfg.MaxAttempt())
	assert.Equal(t, 100*time.Millisecond, cfg.BackoffInitialDuration())
	assert.Equal(t, 2.0, cfg.BackoffMultiplier())
	assert.Equal(t, 2*time.Second, cfg.BackoffMaxDuration())
	assert.Equal(t, "cache", cfg.TmpDir())
	assert.Equal(t, "endpoint-template.json", cfg.TemplatePath())
	assert.Equal(t, "fixture.json", cfg.OutputPath())
	assert.True(t, cfg.IncludeSources())
	assert.Equal(t, "run.prom", cfg.MetricsFile())
}

func TestWithConfigFile_PartialKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, "concurrency: 6\n")

	cfg, err := config.WithConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Concurrency())
	assert.Equal(t, config.DefaultComp, cfg.Context().Comp())
	assert.Equal(t, 3, cfg.MaxAttempt())
	assert.Equal(t, "tmp", cfg.TmpDir())
}

func TestWithConfigFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.True(t, errors.Is(err, config.ErrFileDoesNotExist), "got %v", err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := config.WithConfigFile("")
		assert.True(t, errors.Is(err, config.ErrFileDoesNotExist), "got %v", err)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := config.WithConfigFile(t.TempDir())
		assert.True(t, errors.Is(err, config.ErrReadConfigFail), "got %v", err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfigFile(t, "comp: [unclosed\n")
		_, err := config.WithConfigFile(path)
		assert.True(t, errors.Is(err, config.ErrConfigParsingFail), "got %v", err)
	})

	t.Run("wrong type", func(t *testing.T) {
		path := writeConfigFile(t, "concurrency: many\n")
		_, err := config.WithConfigFile(path)
		assert.True(t, errors.Is(err, config.ErrConfigParsingFail), "got %v", err)
	})

	t.Run("invalid base url", func(t *testing.T) {
		path := writeConfigFile(t, "base_url: ftp://example.org/data\n")
		_, err := config.WithConfigFile(path)
		assert.True(t, errors.Is(err, config.ErrInvalidConfig), "got %v", err)
	})

	t.Run("invalid value", func(t *testing.T) {
		path := writeConfigFile(t, "max_attempt: -1\n")
		_, err := config.WithConfigFile(path)
		assert.True(t, errors.Is(err, config.ErrInvalidConfig), "got %v", err)
	})
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "concurrency: 6\ntmp_dir: from-file\nunit: FNL-000100\n")
	t.Setenv("SCORES_TMP_DIR", "from-env")
	t.Setenv("SCORES_MAX_ATTEMPT", "7")
	t.Setenv("SCORES_INSECURE", "true")

	builder, err := config.Load(path)
	require.NoError(t, err)
	cfg, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Concurrency())
	assert.Equal(t, "from-env", cfg.TmpDir())
	assert.Equal(t, 7, cfg.MaxAttempt())
	assert.False(t, cfg.VerifyTLS())
	assert.Equal(t, "FNL-000100", cfg.UnitFilter())
}

func TestLoad_WithoutFile(t *testing.T) {
	t.Setenv("SCORES_EVENT", "BKBMTEAM5")

	builder, err := config.Load("")
	require.NoError(t, err)
	cfg, err := builder.WithConcurrency(2).Build()
	require.NoError(t, err)

	assert.Equal(t, "BKBMTEAM5", cfg.Context().Event())
	assert.Equal(t, config.DefaultComp, cfg.Context().Comp())
	assert.Equal(t, 2, cfg.Concurrency())
}
