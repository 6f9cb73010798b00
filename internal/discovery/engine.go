package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/rohmanhakim/scores-fixture/internal/document"
	"github.com/rohmanhakim/scores-fixture/internal/fetcher"
	"github.com/rohmanhakim/scores-fixture/internal/metadata"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/rohmanhakim/scores-fixture/internal/storage"
	"golang.org/x/sync/errgroup"
)

const (
	discoverAction = "Engine.DiscoverAndFetch"
	loadAction     = "Engine.LoadUnits"
)

// DefaultConcurrency bounds dependent fetches when no positive value is configured.
const DefaultConcurrency = 4

/*
Engine is the control plane of the fetch stage.

	START -> FETCH_ROOT -> PARSE_ROOT -> FETCH_DEPENDENTS -> DONE
	              |             |
	              +-> FAILED <--+

Guarantees:
  - The root fetch completes before any dependent fetch is scheduled.
  - Each distinct dependent identifier is fetched at most once per run.
  - Dependent failures never abort the run; they are reported in the results.
  - Workers share no mutable state: each writes only its own result slot.
*/
type Engine struct {
	metadataSink metadata.MetadataSink
	fetcher      fetcher.Fetcher
	storageSink  storage.Sink
	concurrency  int
}

func NewEngine(
	metadataSink metadata.MetadataSink,
	f fetcher.Fetcher,
	storageSink storage.Sink,
	concurrency int,
) *Engine {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		metadataSink: metadataSink,
		fetcher:      f,
		storageSink:  storageSink,
		concurrency:  concurrency,
	}
}

func (e *Engine) Concurrency() int {
	return e.concurrency
}

// DiscoverAndFetch fetches the root event document for rctx, discovers its
// units and fetches one head-to-head result per unit into destDir.
//
// The returned error is always a *DiscoveryError and only occurs when the root
// cannot be fetched or parsed; the Discovery is still returned in that case
// with State FAILED and no units.
func (e *Engine) DiscoverAndFetch(
	ctx context.Context,
	rctx resource.Context,
	destDir string,
	opts fetcher.Options,
) (Discovery, error) {
	run := &Discovery{}
	run.enter(StateStart)

	// FETCH_ROOT
	run.enter(StateFetchRoot)
	rootID, err := resource.Build(resource.KindEventGames, rctx, "")
	if err != nil {
		return e.fail(run, &DiscoveryError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidResource,
			Err:     err,
		})
	}

	root := e.fetcher.Fetch(ctx, rootID, destDir, opts)
	run.Root = root
	run.Results = append(run.Results, root)
	run.Counts.Add(root)
	if root.Status() == fetcher.StatusFailed {
		var cause error
		if root.Err() != nil {
			cause = root.Err()
		}
		return e.fail(run, &DiscoveryError{
			Message: fmt.Sprintf("cannot fetch %s: %v", rootID.RemoteName(), cause),
			Cause:   ErrCauseRootUnreachable,
			Root:    rootID.LocalFilename(),
			Err:     cause,
		})
	}

	// PARSE_ROOT
	run.enter(StateParseRoot)
	games, discoveryErr := e.parseRoot(root.LocalPath(), rootID)
	if discoveryErr != nil {
		return e.fail(run, discoveryErr)
	}
	run.Units = games.Units

	// FETCH_DEPENDENTS
	run.enter(StateFetchDependents)
	identifiers := e.dependentIdentifiers(rctx, games.Units)
	for _, result := range e.fetchAll(ctx, identifiers, destDir, opts) {
		run.Results = append(run.Results, result)
		run.Counts.Add(result)
	}

	run.enter(StateDone)
	return *run, nil
}

// LoadUnits re-reads a root document fetched by an earlier run, for
// assembling without fetching.
func (e *Engine) LoadUnits(rctx resource.Context, destDir string) ([]document.Unit, error) {
	rootID, err := resource.Build(resource.KindEventGames, rctx, "")
	if err != nil {
		return nil, e.record(loadAction, &DiscoveryError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidResource,
			Err:     err,
		})
	}

	path, found, locateErr := e.storageSink.Locate(destDir, rootID.LocalFilename())
	if locateErr != nil {
		return nil, e.record(loadAction, &DiscoveryError{
			Message: locateErr.Error(),
			Cause:   ErrCauseRootReadFailure,
			Root:    rootID.LocalFilename(),
			Err:     locateErr,
		})
	}
	if !found {
		return nil, e.record(loadAction, &DiscoveryError{
			Message: fmt.Sprintf("%s not found in %s", rootID.LocalFilename(), destDir),
			Cause:   ErrCauseRootMissing,
			Root:    rootID.LocalFilename(),
		})
	}

	games, discoveryErr := e.parseRoot(path, rootID)
	if discoveryErr != nil {
		return nil, e.record(loadAction, discoveryErr)
	}
	return games.Units, nil
}

func (e *Engine) parseRoot(path string, rootID resource.Identifier) (document.EventGames, *DiscoveryError) {
	data, readErr := e.storageSink.Read(path)
	if readErr != nil {
		return document.EventGames{}, &DiscoveryError{
			Message: readErr.Error(),
			Cause:   ErrCauseRootReadFailure,
			Root:    rootID.LocalFilename(),
			Err:     readErr,
		}
	}
	games, err := document.ParseEventGames(data)
	if err != nil {
		return document.EventGames{}, &DiscoveryError{
			Message: err.Error(),
			Cause:   ErrCauseRootUnparseable,
			Root:    rootID.LocalFilename(),
			Err:     err,
		}
	}
	return games, nil
}

// dependentIdentifiers keeps the first occurrence of each unit. A unit whose
// identifier cannot be built is recorded and left out.
func (e *Engine) dependentIdentifiers(rctx resource.Context, units []document.Unit) []resource.Identifier {
	seen := NewSet[resource.Identifier]()
	identifiers := make([]resource.Identifier, 0, len(units))
	for _, unit := range units {
		id, err := resource.Build(resource.KindHeadToHead, rctx, unit.Code)
		if err != nil {
			e.record(discoverAction, &DiscoveryError{
				Message: fmt.Sprintf("unit %q skipped: %v", unit.Code, err),
				Cause:   ErrCauseInvalidResource,
				Err:     err,
			})
			continue
		}
		if seen.Contains(id) {
			continue
		}
		seen.Add(id)
		identifiers = append(identifiers, id)
	}
	return identifiers
}

func (e *Engine) fetchAll(
	ctx context.Context,
	identifiers []resource.Identifier,
	destDir string,
	opts fetcher.Options,
) []fetcher.FetchResult {
	results := make([]fetcher.FetchResult, len(identifiers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, id := range identifiers {
		g.Go(func() error {
			results[i] = e.fetcher.Fetch(gctx, id, destDir, opts)
			return nil
		})
	}
	// workers never return an error; failures live in the results
	_ = g.Wait()

	return results
}

func (e *Engine) fail(run *Discovery, err *DiscoveryError) (Discovery, error) {
	run.enter(StateFailed)
	run.Units = nil
	return *run, e.record(discoverAction, err)
}

func (e *Engine) record(action string, err *DiscoveryError) *DiscoveryError {
	attrs := []metadata.Attribute{}
	if err.Root != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrResource, err.Root))
	}
	e.metadataSink.RecordError(
		time.Now(),
		"discovery",
		action,
		mapDiscoveryErrorToMetadataCause(err),
		err.Error(),
		attrs,
	)
	return err
}

func (d *Discovery) enter(state State) {
	d.State = state
	d.Transitions = append(d.Transitions, state)
}
