package assembler

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"dario.cat/mergo"
	"github.com/rohmanhakim/scores-fixture/internal/document"
	"github.com/rohmanhakim/scores-fixture/internal/metadata"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/rohmanhakim/scores-fixture/internal/storage"
)

const assembleAction = "Assembler.Assemble"

/*
Assembler turns fetched result fragments into endpoint entries.

Guarantees:
  - A unit whose fragment is absent or unusable never produces an entry.
  - Fragments are looked up with the same filename normalization the fetcher
    writes with.
  - Keys are unique in the output; on collision the later unit wins.
*/
type Assembler struct {
	metadataSink metadata.MetadataSink
	storageSink  storage.Sink
	template     Template
}

func NewAssembler(
	metadataSink metadata.MetadataSink,
	storageSink storage.Sink,
	template Template,
) *Assembler {
	return &Assembler{
		metadataSink: metadataSink,
		storageSink:  storageSink,
		template:     template,
	}
}

// Assemble builds one entry per unit, in unit order, from the fragments in
// destDir. Units with an invalid code or a missing or unparseable fragment are
// skipped and counted; the returned error is a fatal *AssemblyError.
func (a *Assembler) Assemble(
	rctx resource.Context,
	destDir string,
	units []document.Unit,
) (Assembly, error) {
	assembly := Assembly{
		Entries: make(map[string]map[string]any, len(units)),
	}
	sources := map[string]struct{}{}

	if rootID, err := resource.Build(resource.KindEventGames, rctx, ""); err == nil {
		if path, found, _ := a.storageSink.Locate(destDir, rootID.LocalFilename()); found {
			sources[filepath.Base(path)] = struct{}{}
		}
	}

	for _, unit := range units {
		path, h2h, gapErr := a.loadUnit(rctx, destDir, unit)
		if gapErr != nil {
			a.record(gapErr)
			assembly.Skipped++
			assembly.SkippedUnits = append(assembly.SkippedUnits, unit.Code)
			continue
		}
		sources[filepath.Base(path)] = struct{}{}

		body := a.template.Render(rctx, unit.Code)
		if err := mergo.Merge(&body, derive(rctx, unit, h2h), mergo.WithOverride); err != nil {
			return Assembly{}, a.record(&AssemblyError{
				Message: err.Error(),
				Cause:   ErrCauseMergeFailure,
				Unit:    unit.Code,
				Path:    path,
			})
		}

		key := PathKey(rctx, unit.Code)
		if _, exists := assembly.Entries[key]; exists {
			assembly.Collisions = append(assembly.Collisions, key)
			a.metadataSink.RecordError(
				time.Now(),
				"assembler",
				assembleAction,
				metadata.CauseInvariantViolation,
				fmt.Sprintf("endpoint key collision, unit %s replaces the earlier entry", unit.Code),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrEndpoint, key),
					metadata.NewAttr(metadata.AttrUnit, unit.Code),
				},
			)
		}
		assembly.Entries[key] = body
		assembly.Assembled++
		a.metadataSink.RecordArtifact(metadata.ArtifactEndpoint, key, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrUnit, unit.Code),
			metadata.NewAttr(metadata.AttrResource, filepath.Base(path)),
		})
	}

	for name := range sources {
		assembly.GeneratedFrom = append(assembly.GeneratedFrom, name)
	}
	slices.Sort(assembly.GeneratedFrom)

	return assembly, nil
}

func (a *Assembler) loadUnit(rctx resource.Context, destDir string, unit document.Unit) (string, document.HeadToHead, *AssemblyError) {
	id, err := resource.Build(resource.KindHeadToHead, rctx, unit.Code)
	if err != nil {
		return "", document.HeadToHead{}, &AssemblyError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidResource,
			Unit:    unit.Code,
		}
	}
	return a.loadFragment(destDir, id)
}

func (a *Assembler) loadFragment(destDir string, id resource.Identifier) (string, document.HeadToHead, *AssemblyError) {
	path, found, locateErr := a.storageSink.Locate(destDir, id.LocalFilename())
	if locateErr != nil {
		return "", document.HeadToHead{}, &AssemblyError{
			Message: locateErr.Error(),
			Cause:   ErrCauseFragmentUnreadable,
			Unit:    id.Unit(),
		}
	}
	if !found {
		return "", document.HeadToHead{}, &AssemblyError{
			Message: fmt.Sprintf("%s not found in %s", id.LocalFilename(), destDir),
			Cause:   ErrCauseFragmentMissing,
			Unit:    id.Unit(),
		}
	}

	data, readErr := a.storageSink.Read(path)
	if readErr != nil {
		return "", document.HeadToHead{}, &AssemblyError{
			Message: readErr.Error(),
			Cause:   ErrCauseFragmentUnreadable,
			Unit:    id.Unit(),
			Path:    path,
		}
	}

	h2h, err := document.ParseHeadToHead(data)
	if err != nil {
		return "", document.HeadToHead{}, &AssemblyError{
			Message: err.Error(),
			Cause:   ErrCauseFragmentUnparseable,
			Unit:    id.Unit(),
			Path:    path,
		}
	}
	return path, h2h, nil
}

func (a *Assembler) record(err *AssemblyError) *AssemblyError {
	attrs := []metadata.Attribute{}
	if err.Unit != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrUnit, err.Unit))
	}
	if err.Path != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrPath, err.Path))
	}
	a.metadataSink.RecordError(
		time.Now(),
		"assembler",
		assembleAction,
		mapAssemblyErrorToMetadataCause(err),
		err.Error(),
		attrs,
	)
	return err
}
