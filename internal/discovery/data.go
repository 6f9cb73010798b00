package discovery

import (
	"github.com/rohmanhakim/scores-fixture/internal/document"
	"github.com/rohmanhakim/scores-fixture/internal/fetcher"
)

type State string

const (
	StateStart           State = "START"
	StateFetchRoot       State = "FETCH_ROOT"
	StateParseRoot       State = "PARSE_ROOT"
	StateFetchDependents State = "FETCH_DEPENDENTS"
	StateDone            State = "DONE"
	StateFailed          State = "FAILED"
)

// Counts tallies fetch results by status.
type Counts struct {
	Downloaded      int
	SkippedExisting int
	Failed          int
}

func (c *Counts) Add(result fetcher.FetchResult) {
	switch result.Status() {
	case fetcher.StatusDownloaded:
		c.Downloaded++
	case fetcher.StatusSkippedExisting:
		c.SkippedExisting++
	case fetcher.StatusFailed:
		c.Failed++
	}
}

func (c Counts) Total() int {
	return c.Downloaded + c.SkippedExisting + c.Failed
}

type Discovery struct {
	// Units in root document order.
	Units []document.Unit
	Root  fetcher.FetchResult
	// Results holds the root result first, then one per distinct dependent in unit order.
	Results []fetcher.FetchResult
	State   State
	// Transitions lists every state entered, START included.
	Transitions []State
	Counts      Counts
}

// Dependents returns the results after the root.
func (d Discovery) Dependents() []fetcher.FetchResult {
	if len(d.Results) <= 1 {
		return nil
	}
	return d.Results[1:]
}
