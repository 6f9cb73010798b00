package metadata

import (
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

/*
Recorder turns pipeline events into structured logs and run metrics.
It must not:
  - perform I/O decisions
  - affect control flow

Ordering guarantees:
  - Events from one goroutine are logged in the order they are recorded.
  - No global ordering across pool workers is guaranteed.

Metadata is write-only.
No component may read metadata to influence fetch or assembly decisions.
*/
type Recorder struct {
	runID   string
	logger  *zap.Logger
	metrics *runMetrics
}

// NewRecorder tags every event with a fresh run id. A nil logger discards logs.
func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	return &Recorder{
		runID:   runID,
		logger:  logger.With(zap.String("run_id", runID)),
		metrics: newRunMetrics(),
	}
}

func (r *Recorder) RunID() string {
	return r.runID
}

// Registry exposes the run metrics, e.g. for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.metrics.registry
}

// WriteMetrics dumps the run metrics in the Prometheus textfile format.
func (r *Recorder) WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, r.metrics.registry)
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	r.metrics.errors.WithLabelValues(packageName, cause.String()).Inc()

	fields := []zap.Field{
		zap.Time("observed_at", observedAt),
		zap.String("package", packageName),
		zap.String("action", action),
		zap.Stringer("cause", cause),
		zap.String("details", details),
	}
	r.logger.Warn("pipeline error", append(fields, attrFields(attrs)...)...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	outcome string,
	retryCount int,
) {
	r.metrics.fetches.WithLabelValues(outcome).Inc()
	if httpStatus != 0 {
		r.metrics.fetchDuration.Observe(duration.Seconds())
	}

	r.logger.Info("fetch",
		zap.String("url", fetchUrl),
		zap.Int("http_status", httpStatus),
		zap.Duration("duration", duration),
		zap.String("outcome", outcome),
		zap.Int("retry_count", retryCount),
	)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	r.metrics.artifacts.WithLabelValues(string(kind)).Inc()

	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("path", path),
	}
	r.logger.Debug("artifact", append(fields, attrFields(attrs)...)...)
}

/*
RecordFinalStats records the terminal summary of a run.

Contract:
  - MUST be called at most once per run, after the pipeline returned.
  - Recorded stats MUST NOT influence control flow.
*/
func (r *Recorder) RecordFinalStats(stats RunStats) {
	r.metrics.units.WithLabelValues("assembled").Add(float64(stats.Assembled))
	r.metrics.units.WithLabelValues("skipped").Add(float64(stats.SkippedUnits))
	r.metrics.runDuration.Set(stats.Duration.Seconds())

	r.logger.Info("run finished",
		zap.Int("downloaded", stats.Downloaded),
		zap.Int("skipped_existing", stats.SkippedExisting),
		zap.Int("failed", stats.Failed),
		zap.Int("units", stats.Units),
		zap.Int("assembled", stats.Assembled),
		zap.Int("skipped_units", stats.SkippedUnits),
		zap.Int("collisions", stats.Collisions),
		zap.Int64("duration_ms", stats.Duration.Milliseconds()),
	)
}

func attrFields(attrs []Attribute) []zap.Field {
	fields := make([]zap.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = append(fields, zap.String(string(a.Key), a.Value))
	}
	return fields
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		outcome string,
		retryCount int,
	)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type RunFinalizer interface {
	RecordFinalStats(stats RunStats)
}

// NoopSink implements MetadataSink and RunFinalizer but does nothing.
// Callers (or tests) can decide whether to inject a Recorder or a NoopSink.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	outcome string,
	retryCount int,
) {
}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordFinalStats(stats RunStats) {}
