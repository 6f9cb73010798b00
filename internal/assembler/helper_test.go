package assembler_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/scores-fixture/internal/document"
	"github.com/rohmanhakim/scores-fixture/internal/metadata"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/stretchr/testify/require"
)

type recordedError struct {
	cause   metadata.ErrorCause
	details string
	attrs   []metadata.Attribute
}

type recordingSink struct {
	metadata.NoopSink

	mu        sync.Mutex
	errors    []recordedError
	artifacts []string
}

func (r *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, recordedError{cause: cause, details: details, attrs: attrs})
}

func (r *recordingSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, path)
}

func (r *recordingSink) causes() []metadata.ErrorCause {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]metadata.ErrorCause, 0, len(r.errors))
	for _, e := range r.errors {
		out = append(out, e.cause)
	}
	return out
}

func testContext(t *testing.T) resource.Context {
	t.Helper()
	rctx, err := resource.NewContext("OG2024", "FBLMTEAM11", "ENG")
	require.NoError(t, err)
	return rctx
}

func fragmentName(t *testing.T, unit string) string {
	t.Helper()
	id, err := resource.Build(resource.KindHeadToHead, testContext(t), unit)
	require.NoError(t, err)
	return id.LocalFilename()
}

func rootName(t *testing.T) string {
	t.Helper()
	id, err := resource.Build(resource.KindEventGames, testContext(t), "")
	require.NoError(t, err)
	return id.LocalFilename()
}

// placeFragment copies a testdata fixture into dir under the unit's name.
func placeFragment(t *testing.T, dir, unit, fixture string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", fixture))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, fragmentName(t, unit)), data, 0644))
}

func placeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func unit(code string) document.Unit {
	return document.Unit{Code: code, EventName: "Men's Football"}
}

// normalize passes v through JSON so that bodies compare independently of
// the Go types they were built from.
func normalize(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func decode(t *testing.T, body string) any {
	t.Helper()
	var out any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}
