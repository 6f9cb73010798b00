package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/rohmanhakim/scores-fixture/pkg/urlutil"
)

const (
	DefaultComp      = "OG2024"
	DefaultEvent     = "FBLMTEAM11"
	DefaultLang      = "ENG"
	DefaultBaseURL   = "https://stacy.olympics.com/OG2024/data"
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.5993.117 Safari/537.36"
	DefaultTmpDir    = "tmp"
	DefaultOutput    = "example.json"
)

type Config struct {
	//===============
	//  Scope
	//===============
	// Competition, event and language every identifier is built from.
	context resource.Context

	//===============
	// Fetch
	//===============
	// Directory the data files are served from; remote names are appended to it.
	baseURL url.URL
	// Whether TLS certificates of the data service are verified.
	verifyTLS bool
	// Re-download resources that already exist in the working directory.
	forceOverwrite bool
	// User agent that will be used in the request header. In raw string
	userAgent string
	// Referer header. Empty means the base URL.
	referer string
	// Extra request headers, applied after the browser-like defaults.
	headers map[string]string
	// Maximum time of a single fetch request
	timeout time.Duration

	//===============
	// Politeness
	//===============
	// Maximum number of dependent fetches in flight.
	concurrency int
	// Minimum, fixed waiting time you enforce between two HTTP requests to the same host.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Output
	//===============
	// Working directory holding one file per fetched resource
	tmpDir string
	// Endpoint template. Empty means the built-in template.
	templatePath string
	// Assembled output file
	outputPath string
	// Add the generated_from list of source files to the output
	includeSources bool
	// Unit code, or part of one, to assemble alone. Empty means every unit.
	unitFilter string
	// Prometheus textfile with run metrics. Empty disables it.
	metricsFile string
}

// WithDefault creates a new Config for rctx with default values for all other fields.
func WithDefault(rctx resource.Context) *Config {
	baseURL, _ := urlutil.ParseBase(DefaultBaseURL)
	defaultConfig := Config{
		context:                rctx,
		baseURL:                baseURL,
		verifyTLS:              true,
		forceOverwrite:         false,
		userAgent:              DefaultUserAgent,
		headers:                map[string]string{},
		timeout:                30 * time.Second,
		concurrency:            4,
		baseDelay:              0,
		jitter:                 0,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: time.Second,
		backoffMultiplier:      1.5,
		backoffMaxDuration:     10 * time.Second,
		tmpDir:                 DefaultTmpDir,
		outputPath:             DefaultOutput,
	}
	return &defaultConfig
}

// DefaultContext is the competition the tool targets when nothing else is given.
func DefaultContext() resource.Context {
	rctx, _ := resource.NewContext(DefaultComp, DefaultEvent, DefaultLang)
	return rctx
}

func (c *Config) WithContext(rctx resource.Context) *Config {
	c.context = rctx
	return c
}

func (c *Config) WithBaseURL(baseURL url.URL) *Config {
	c.baseURL = baseURL
	return c
}

func (c *Config) WithVerifyTLS(verify bool) *Config {
	c.verifyTLS = verify
	return c
}

func (c *Config) WithForceOverwrite(force bool) *Config {
	c.forceOverwrite = force
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithReferer(referer string) *Config {
	c.referer = referer
	return c
}

func (c *Config) WithHeaders(headers map[string]string) *Config {
	c.headers = headers
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTmpDir(dir string) *Config {
	c.tmpDir = dir
	return c
}

func (c *Config) WithTemplatePath(path string) *Config {
	c.templatePath = path
	return c
}

func (c *Config) WithOutputPath(path string) *Config {
	c.outputPath = path
	return c
}

func (c *Config) WithIncludeSources(include bool) *Config {
	c.includeSources = include
	return c
}

func (c *Config) WithUnitFilter(unit string) *Config {
	c.unitFilter = unit
	return c
}

func (c *Config) WithMetricsFile(path string) *Config {
	c.metricsFile = path
	return c
}

func (c *Config) Build() (Config, error) {
	if c.context.Comp() == "" || c.context.Event() == "" || c.context.Lang() == "" {
		return Config{}, fmt.Errorf("%w: comp, event and lang are required", ErrInvalidConfig)
	}
	if c.baseURL.Scheme == "" || c.baseURL.Host == "" {
		return Config{}, fmt.Errorf("%w: base URL must be absolute", ErrInvalidConfig)
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1, got %d", ErrInvalidConfig, c.maxAttempt)
	}
	if c.timeout < 0 {
		return Config{}, fmt.Errorf("%w: timeout cannot be negative", ErrInvalidConfig)
	}
	if c.backoffMultiplier < 1 {
		return Config{}, fmt.Errorf("%w: backoffMultiplier must be at least 1, got %v", ErrInvalidConfig, c.backoffMultiplier)
	}
	if c.tmpDir == "" {
		return Config{}, fmt.Errorf("%w: tmpDir cannot be empty", ErrInvalidConfig)
	}
	if c.outputPath == "" {
		return Config{}, fmt.Errorf("%w: outputPath cannot be empty", ErrInvalidConfig)
	}
	if c.headers == nil {
		c.headers = map[string]string{}
	}
	return *c, nil
}

func (c Config) Context() resource.Context {
	return c.context
}

func (c Config) BaseURL() url.URL {
	return c.baseURL
}

func (c Config) VerifyTLS() bool {
	return c.verifyTLS
}

func (c Config) ForceOverwrite() bool {
	return c.forceOverwrite
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) Referer() string {
	return c.referer
}

func (c Config) Headers() map[string]string {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return headers
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) TmpDir() string {
	return c.tmpDir
}

func (c Config) TemplatePath() string {
	return c.templatePath
}

func (c Config) OutputPath() string {
	return c.outputPath
}

func (c Config) IncludeSources() bool {
	return c.includeSources
}

func (c Config) UnitFilter() string {
	return c.unitFilter
}

func (c Config) MetricsFile() string {
	return c.metricsFile
}
