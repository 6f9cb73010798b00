package assembler

import (
	"fmt"
	"strings"

	"github.com/rohmanhakim/scores-fixture/internal/document"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
)

// SourcesKey is the optional output key listing the files an output was built from.
const SourcesKey = "generated_from"

// Assembly is the outcome of one assembly pass.
type Assembly struct {
	// Entries maps an endpoint path key to its response body.
	Entries map[string]map[string]any
	// Assembled counts rendered units, including those whose key collided.
	Assembled int
	// Skipped counts units without a usable result fragment.
	Skipped      int
	SkippedUnits []string
	// Collisions lists every key that was written more than once, in order.
	Collisions []string
	// GeneratedFrom holds the sorted base names of every file read.
	GeneratedFrom []string
}

// Document returns the output object. includeSources adds SourcesKey.
func (a Assembly) Document(includeSources bool) map[string]any {
	doc := make(map[string]any, len(a.Entries)+1)
	for key, body := range a.Entries {
		doc[key] = body
	}
	if includeSources {
		sources := a.GeneratedFrom
		if sources == nil {
			sources = []string{}
		}
		doc[SourcesKey] = sources
	}
	return doc
}

// PathKey is the endpoint path of a unit. The event is used as supplied,
// without padding.
func PathKey(rctx resource.Context, unit string) string {
	return fmt.Sprintf("/api/scores/%s/%s/%s?lang=%s", rctx.Comp(), rctx.Event(), unit, rctx.Lang())
}

// SelectUnit picks the unit to assemble alone: the one whose code equals
// filter, else the first whose code contains it.
func SelectUnit(units []document.Unit, filter string) (document.Unit, error) {
	for _, u := range units {
		if u.Code == filter {
			return u, nil
		}
	}
	for _, u := range units {
		if strings.Contains(u.Code, filter) {
			return u, nil
		}
	}
	return document.Unit{}, &AssemblyError{
		Message: fmt.Sprintf("%q among %d units", filter, len(units)),
		Cause:   ErrCauseUnitNotFound,
		Unit:    filter,
	}
}
