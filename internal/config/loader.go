package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/rohmanhakim/scores-fixture/pkg/urlutil"
)

// EnvPrefix scopes the environment variables Load reads, e.g. SCORES_TMP_DIR.
const EnvPrefix = "SCORES_"

type configDTO struct {
	Comp                   string            `koanf:"comp"`
	Event                  string            `koanf:"event"`
	Lang                   string            `koanf:"lang"`
	BaseURL                string            `koanf:"base_url"`
	Insecure               bool              `koanf:"insecure"`
	Force                  bool              `koanf:"force"`
	UserAgent              string            `koanf:"user_agent"`
	Referer                string            `koanf:"referer"`
	Headers                map[string]string `koanf:"headers"`
	Timeout                time.Duration     `koanf:"timeout"`
	Concurrency            int               `koanf:"concurrency"`
	BaseDelay              time.Duration     `koanf:"base_delay"`
	Jitter                 time.Duration     `koanf:"jitter"`
	RandomSeed             int64             `koanf:"random_seed"`
	MaxAttempt             int               `koanf:"max_attempt"`
	BackoffInitialDuration time.Duration     `koanf:"backoff_initial"`
	BackoffMultiplier      float64           `koanf:"backoff_multiplier"`
	BackoffMaxDuration     time.Duration     `koanf:"backoff_max"`
	TmpDir                 string            `koanf:"tmp_dir"`
	Template               string            `koanf:"template"`
	Out                    string            `koanf:"out"`
	IncludeSources         bool              `koanf:"include_sources"`
	Unit                   string            `koanf:"unit"`
	MetricsFile            string            `koanf:"metrics_file"`
}

// Load layers configuration sources and returns a builder for further
// overrides (CLI flags). Order of precedence (low -> high):
//  1. defaults (WithDefault(DefaultContext()))
//  2. YAML file, when path is not empty
//  3. env (prefix SCORES_)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrReadConfigFail, path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
		}
	}

	// SCORES_MAX_ATTEMPT -> max_attempt, matching the koanf tags
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	dto := configDTO{}
	if err := k.UnmarshalWithConf("", &dto, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(dto)
}

// WithConfigFile builds a Config from a YAML file, still honouring env overrides.
func WithConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("%w: empty path", ErrFileDoesNotExist)
	}
	builder, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	return builder.Build()
}

func newConfigFromDTO(dto configDTO) (*Config, error) {
	defaults := DefaultContext()
	comp, event, lang := defaults.Comp(), defaults.Event(), defaults.Lang()
	if dto.Comp != "" {
		comp = dto.Comp
	}
	if dto.Event != "" {
		event = dto.Event
	}
	if dto.Lang != "" {
		lang = dto.Lang
	}
	rctx, err := resource.NewContext(comp, event, lang)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}

	cfg := WithDefault(rctx)

	// Only override if non-zero value is provided
	if dto.BaseURL != "" {
		baseURL, err := urlutil.ParseBase(dto.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
		cfg.baseURL = baseURL
	}
	if dto.Insecure {
		cfg.verifyTLS = false
	}
	if dto.Force {
		cfg.forceOverwrite = true
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.Referer != "" {
		cfg.referer = dto.Referer
	}
	if len(dto.Headers) > 0 {
		cfg.headers = dto.Headers
	}
	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.Concurrency != 0 {
		cfg.concurrency = dto.Concurrency
	}
	if dto.BaseDelay != 0 {
		cfg.baseDelay = dto.BaseDelay
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.TmpDir != "" {
		cfg.tmpDir = dto.TmpDir
	}
	if dto.Template != "" {
		cfg.templatePath = dto.Template
	}
	if dto.Out != "" {
		cfg.outputPath = dto.Out
	}
	if dto.IncludeSources {
		cfg.includeSources = true
	}
	if dto.Unit != "" {
		cfg.unitFilter = dto.Unit
	}
	if dto.MetricsFile != "" {
		cfg.metricsFile = dto.MetricsFile
	}

	return cfg, nil
}
