package discovery_test

import (
	"testing"

	"github.com/rohmanhakim/scores-fixture/internal/discovery"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/stretchr/testify/assert"
)

func TestSet_IdentifiersAreValueKeys(t *testing.T) {
	a := h2hIdentifier(t, "FNL-000100")
	b := h2hIdentifier(t, "FNL-000100")
	c := h2hIdentifier(t, "SF-000200")

	ids := discovery.NewSet[resource.Identifier]()
	assert.Zero(t, ids.Size())
	ids.Add(a)
	ids.Add(b)
	assert.Equal(t, 1, ids.Size(), "equal identifiers are the same key")
	assert.True(t, ids.Contains(b))
	assert.False(t, ids.Contains(c))

	ids.Add(c)
	assert.Equal(t, 2, ids.Size())
}
