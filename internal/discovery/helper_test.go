package discovery_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/scores-fixture/internal/fetcher"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fetcherMock is a mock for fetcher.Fetcher that also records call order and
// the peak number of concurrent calls.
type fetcherMock struct {
	mock.Mock

	mu          sync.Mutex
	calls       []resource.Identifier
	rootDone    bool
	earlyCalls  int
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (m *fetcherMock) Fetch(
	ctx context.Context,
	identifier resource.Identifier,
	destDir string,
	opts fetcher.Options,
) fetcher.FetchResult {
	m.mu.Lock()
	m.calls = append(m.calls, identifier)
	if identifier.Kind() == resource.KindHeadToHead && !m.rootDone {
		m.earlyCalls++
	}
	m.mu.Unlock()

	current := m.inFlight.Add(1)
	for {
		peak := m.maxInFlight.Load()
		if current <= peak || m.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.inFlight.Add(-1)

	args := m.Called(ctx, identifier, destDir, opts)

	if identifier.Kind() == resource.KindEventGames {
		m.mu.Lock()
		m.rootDone = true
		m.mu.Unlock()
	}

	if fn, ok := args.Get(0).(func(resource.Identifier, string) fetcher.FetchResult); ok {
		return fn(identifier, destDir)
	}
	return args.Get(0).(fetcher.FetchResult)
}

func (m *fetcherMock) callOrder() []resource.Identifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]resource.Identifier, len(m.calls))
	copy(out, m.calls)
	return out
}

func isKind(kind resource.Kind) interface{} {
	return mock.MatchedBy(func(id resource.Identifier) bool {
		return id.Kind() == kind
	})
}

// downloaded answers every dependent fetch with a success.
func downloaded(id resource.Identifier, destDir string) fetcher.FetchResult {
	return fetcher.NewFetchResultForTest(id, filepath.Join(destDir, id.LocalFilename()), fetcher.StatusDownloaded, nil)
}

func testContext(t *testing.T) resource.Context {
	t.Helper()
	rctx, err := resource.NewContext("OG2024", "FBLMTEAM11", "ENG")
	require.NoError(t, err)
	return rctx
}

func rootIdentifier(t *testing.T) resource.Identifier {
	t.Helper()
	id, err := resource.Build(resource.KindEventGames, testContext(t), "")
	require.NoError(t, err)
	return id
}

func h2hIdentifier(t *testing.T, unit string) resource.Identifier {
	t.Helper()
	id, err := resource.Build(resource.KindHeadToHead, testContext(t), unit)
	require.NoError(t, err)
	return id
}

// writeRoot stores a root document for the units and returns its path.
func writeRoot(t *testing.T, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, rootIdentifier(t).LocalFilename())
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func rootWithUnits(units ...string) string {
	body := `{"event": {"code": "FBLMTEAM11------------", "phases": [{"units": [`
	for i, u := range units {
		if i > 0 {
			body += ","
		}
		body += `{"code": "` + u + `"}`
	}
	return body + `]}]}}`
}
