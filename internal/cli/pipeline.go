package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rohmanhakim/scores-fixture/internal/assembler"
	"github.com/rohmanhakim/scores-fixture/internal/config"
	"github.com/rohmanhakim/scores-fixture/internal/discovery"
	"github.com/rohmanhakim/scores-fixture/internal/document"
	"github.com/rohmanhakim/scores-fixture/internal/fetcher"
	"github.com/rohmanhakim/scores-fixture/internal/metadata"
	"github.com/rohmanhakim/scores-fixture/internal/report"
	"github.com/rohmanhakim/scores-fixture/internal/storage"
	"github.com/rohmanhakim/scores-fixture/pkg/limiter"
	"github.com/rohmanhakim/scores-fixture/pkg/timeutil"
	"go.uber.org/zap"
)

// pipeline wires every stage of a run for one config.
type pipeline struct {
	cfg      config.Config
	logger   *zap.Logger
	recorder *metadata.Recorder
	engine   *discovery.Engine
	storage  storage.Sink
	started  time.Time

	summary report.Summary
}

func newPipeline(cfg config.Config) (*pipeline, error) {
	logger, err := newLogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("cannot build logger: %w", err)
	}
	recorder := metadata.NewRecorder(logger)

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())
	rateLimiter.SetBackoffParam(timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	))

	localSink := storage.NewLocalSink(recorder)
	jsonFetcher := fetcher.NewJsonFetcher(recorder, &localSink, rateLimiter)

	return &pipeline{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		engine:   discovery.NewEngine(recorder, jsonFetcher, &localSink, cfg.Concurrency()),
		storage:  &localSink,
		started:  time.Now(),
	}, nil
}

func (p *pipeline) fetch(ctx context.Context) (discovery.Discovery, error) {
	baseURL := p.cfg.BaseURL()
	p.logger.Info("fetching",
		zap.String("context", p.cfg.Context().String()),
		zap.String("base_url", baseURL.String()),
		zap.String("tmp_dir", p.cfg.TmpDir()),
		zap.Int("concurrency", p.engine.Concurrency()),
	)
	run, err := p.engine.DiscoverAndFetch(ctx, p.cfg.Context(), p.cfg.TmpDir(), fetcher.NewOptions(p.cfg))

	p.summary.Stats.Downloaded = run.Counts.Downloaded
	p.summary.Stats.SkippedExisting = run.Counts.SkippedExisting
	p.summary.Stats.Failed = run.Counts.Failed
	p.summary.Stats.Units = len(run.Units)
	for i := range run.Results {
		result := &run.Results[i]
		if result.Status() == fetcher.StatusFailed {
			p.summary.Failed = append(p.summary.Failed, result.Identifier().RemoteName())
		}
	}
	return run, err
}

func (p *pipeline) loadUnits() ([]document.Unit, error) {
	units, err := p.engine.LoadUnits(p.cfg.Context(), p.cfg.TmpDir())
	p.summary.Stats.Units = len(units)
	return units, err
}

// assemble renders the units and writes the output file. Nothing is written
// when assembly fails.
func (p *pipeline) assemble(units []document.Unit) error {
	if filter := p.cfg.UnitFilter(); filter != "" {
		selected, err := assembler.SelectUnit(units, filter)
		if err != nil {
			p.recorder.RecordError(
				time.Now(),
				"cli",
				"pipeline.assemble",
				metadata.CauseContentMissing,
				err.Error(),
				[]metadata.Attribute{metadata.NewAttr(metadata.AttrUnit, filter)},
			)
			return err
		}
		units = []document.Unit{selected}
	}

	tmpl, err := assembler.LoadTemplate(p.cfg.TemplatePath())
	if err != nil {
		return err
	}

	assembly, err := assembler.NewAssembler(p.recorder, p.storage, tmpl).
		Assemble(p.cfg.Context(), p.cfg.TmpDir(), units)
	if err != nil {
		return err
	}
	p.summary.Stats.Assembled = assembly.Assembled
	p.summary.Stats.SkippedUnits = assembly.Skipped
	p.summary.Stats.Collisions = len(assembly.Collisions)
	p.summary.SkippedUnits = assembly.SkippedUnits
	p.summary.Collisions = assembly.Collisions

	if err := assembler.WriteFile(p.cfg.OutputPath(), assembly.Document(p.cfg.IncludeSources())); err != nil {
		p.recorder.RecordError(
			time.Now(),
			"cli",
			"pipeline.assemble",
			metadata.CauseStorageFailure,
			err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrWritePath, p.cfg.OutputPath())},
		)
		return err
	}
	p.recorder.RecordArtifact(metadata.ArtifactOutput, p.cfg.OutputPath(), nil)
	p.summary.Output = p.cfg.OutputPath()
	return nil
}

// finish records the final stats, writes the metrics file and prints the
// summary. It runs on failed runs too.
func (p *pipeline) finish(out io.Writer) error {
	p.summary.Stats.Duration = time.Since(p.started)
	p.recorder.RecordFinalStats(p.summary.Stats)
	defer func() { _ = p.logger.Sync() }()

	report.Render(out, p.summary)

	if p.cfg.MetricsFile() == "" {
		return nil
	}
	if err := p.recorder.WriteMetrics(p.cfg.MetricsFile()); err != nil {
		return fmt.Errorf("cannot write metrics file: %w", err)
	}
	return nil
}
