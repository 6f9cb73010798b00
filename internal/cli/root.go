package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohmanhakim/scores-fixture/internal/config"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/rohmanhakim/scores-fixture/pkg/urlutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// persistent
	cfgFile string
	comp    string
	event   string
	lang    string
	tmpDir  string
	verbose bool

	// fetch
	insecure    bool
	baseURL     string
	force       bool
	concurrency int
	timeout     time.Duration
	maxAttempt  int
	userAgent   string
	baseDelay   time.Duration
	jitter      time.Duration
	metricsFile string

	// assemble
	templatePath   string
	outPath        string
	includeSources bool
	unitFilter     string

	// replaces the zap logger built from --verbose, for tests
	loggerOverride *zap.Logger
)

const (
	defaultConcurrency = 4
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempt  = 3
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scores-fixture",
	Short: "Builds an offline scores API fixture from a competition data service.",
	Long: `scores-fixture downloads the event document of a competition event, discovers
its units, fetches one head-to-head result per unit and assembles them into a
single JSON file that maps /api/scores/... endpoint paths to response bodies.

The fetch stage is idempotent: files already present in the working directory are
not downloaded again unless --force is given.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "YAML config file path (e.g., ./scores-fixture.yaml)")
	rootCmd.PersistentFlags().StringVar(&comp, "comp", config.DefaultComp, "competition code")
	rootCmd.PersistentFlags().StringVar(&event, "event", config.DefaultEvent, "event code, padded with '-' in remote names")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", config.DefaultLang, "language code")
	rootCmd.PersistentFlags().StringVar(&tmpDir, "tmp", config.DefaultTmpDir, "working directory holding the fetched files")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level")

	rootCmd.AddCommand(fetchCmd, assembleCmd, runCmd, versionCmd)
}

func addFetchFlags(c *cobra.Command) {
	c.Flags().BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")
	c.Flags().StringVar(&baseURL, "base-url", config.DefaultBaseURL, "directory URL the data files are served from")
	c.Flags().BoolVar(&force, "force", false, "download again even if the file already exists")
	c.Flags().IntVar(&concurrency, "concurrency", defaultConcurrency, "number of concurrent unit fetches")
	c.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "timeout of a single HTTP request")
	c.Flags().IntVar(&maxAttempt, "max-attempt", defaultMaxAttempt, "attempts per resource before giving up")
	c.Flags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	c.Flags().DurationVar(&baseDelay, "base-delay", 0, "base delay between requests to the data service")
	c.Flags().DurationVar(&jitter, "jitter", 0, "random jitter added to delays and retry backoff")
	c.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics to this Prometheus textfile")
}

func addAssembleFlags(c *cobra.Command) {
	c.Flags().StringVar(&templatePath, "template", "", "endpoint template (JSON or JSON5); built-in when empty")
	c.Flags().StringVar(&outPath, "out", config.DefaultOutput, "assembled output file")
	c.Flags().BoolVar(&includeSources, "include-sources", false, "add the generated_from list of source files")
	c.Flags().StringVar(&unitFilter, "unit", "", "assemble only this unit, by exact code or else the first code containing it")
}

// InitConfigWithError layers the config file and environment, then applies
// the CLI flags that differ from their defaults, returning any errors.
// This makes it easier to test error cases.
func InitConfigWithError() (config.Config, error) {
	configBuilder, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("error initializing config: %w", err)
	}

	current := configBuilder.Context()
	rctx, err := resource.NewContext(
		pick(comp, config.DefaultComp, current.Comp()),
		pick(event, config.DefaultEvent, current.Event()),
		pick(lang, config.DefaultLang, current.Lang()),
	)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: %s", config.ErrInvalidConfig, err.Error())
	}
	configBuilder = configBuilder.WithContext(rctx)

	if tmpDir != "" && tmpDir != config.DefaultTmpDir {
		configBuilder = configBuilder.WithTmpDir(tmpDir)
	}

	if insecure {
		configBuilder = configBuilder.WithVerifyTLS(false)
	}

	if baseURL != "" && baseURL != config.DefaultBaseURL {
		parsed, err := urlutil.ParseBase(baseURL)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: base url: %s", config.ErrInvalidConfig, err.Error())
		}
		configBuilder = configBuilder.WithBaseURL(parsed)
	}

	if force {
		configBuilder = configBuilder.WithForceOverwrite(force)
	}

	if concurrency > 0 && concurrency != defaultConcurrency {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if timeout > 0 && timeout != defaultTimeout {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if maxAttempt != 0 && maxAttempt != defaultMaxAttempt {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if metricsFile != "" {
		configBuilder = configBuilder.WithMetricsFile(metricsFile)
	}

	if templatePath != "" {
		configBuilder = configBuilder.WithTemplatePath(templatePath)
	}

	if outPath != "" && outPath != config.DefaultOutput {
		configBuilder = configBuilder.WithOutputPath(outPath)
	}

	if includeSources {
		configBuilder = configBuilder.WithIncludeSources(includeSources)
	}

	if unitFilter != "" {
		configBuilder = configBuilder.WithUnitFilter(unitFilter)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// pick returns the flag value unless it is unset or still the flag default.
func pick(flagValue, flagDefault, current string) string {
	if flagValue == "" || flagValue == flagDefault {
		return current
	}
	return flagValue
}

func ResetFlags() {
	cfgFile = ""
	comp = ""
	event = ""
	lang = ""
	tmpDir = ""
	verbose = false
	insecure = false
	baseURL = ""
	force = false
	concurrency = 0
	timeout = 0
	maxAttempt = 0
	userAgent = ""
	baseDelay = 0
	jitter = 0
	metricsFile = ""
	templatePath = ""
	outPath = ""
	includeSources = false
	unitFilter = ""
	loggerOverride = nil
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetContextForTest(c, e, l string) {
	comp = c
	event = e
	lang = l
}

func SetTmpDirForTest(dir string) {
	tmpDir = dir
}

func SetInsecureForTest(skip bool) {
	insecure = skip
}

func SetBaseURLForTest(u string) {
	baseURL = u
}

func SetForceForTest(f bool) {
	force = f
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetMaxAttemptForTest(attempts int) {
	maxAttempt = attempts
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetBaseDelayForTest(delay time.Duration) {
	baseDelay = delay
}

func SetJitterForTest(j time.Duration) {
	jitter = j
}

func SetMetricsFileForTest(path string) {
	metricsFile = path
}

func SetTemplatePathForTest(path string) {
	templatePath = path
}

func SetOutPathForTest(path string) {
	outPath = path
}

func SetIncludeSourcesForTest(include bool) {
	includeSources = include
}

func SetUnitFilterForTest(unit string) {
	unitFilter = unit
}

func SetLoggerForTest(logger *zap.Logger) {
	loggerOverride = logger
}
