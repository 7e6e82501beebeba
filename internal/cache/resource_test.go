package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/mapmarkup/pkg/core"
)

func TestResourceIndex_NewResourceIndex(t *testing.T) {
	index := NewResourceIndex()

	require.NotNil(t, index)
	assert.NotNil(t, index.links)
	assert.Equal(t, 0, index.Len())
}

func TestResourceIndex_Get_NotFound(t *testing.T) {
	index := NewResourceIndex()

	_, ok := index.Get("nonexistent")
	assert.False(t, ok, "expected not to find nonexistent resource")
}

func TestResourceIndex_Rebuild(t *testing.T) {
	index := NewResourceIndex()
	index.Rebuild([]core.Drawing{{ID: "old", ResourceID: "stale"}})

	index.Rebuild([]core.Drawing{
		{ID: "a", ResourceID: "R1"},
		{ID: "b"},
		{ID: "c", ResourceID: "R2"},
	})

	assert.Equal(t, 2, index.Len())
	id, ok := index.Get("R2")
	require.True(t, ok)
	assert.Equal(t, "c", id)
	_, ok = index.Get("stale")
	assert.False(t, ok, "expected rebuild to drop stale links")
}

func TestResourceIndex_RebuildEmpty(t *testing.T) {
	index := NewResourceIndex()
	index.Rebuild([]core.Drawing{{ID: "a", ResourceID: "R1"}})

	index.Rebuild(nil)

	assert.Equal(t, 0, index.Len())
}

func TestResourceIndex_ConcurrentAccess(t *testing.T) {
	index := NewResourceIndex()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			drawings := make([]core.Drawing, i+1)
			for j := range drawings {
				drawings[j] = core.Drawing{ID: fmt.Sprintf("d%d", j), ResourceID: fmt.Sprintf("R%d", j)}
			}
			index.Rebuild(drawings)
		}(i)
		go func(i int) {
			defer wg.Done()
			index.Get(fmt.Sprintf("R%d", i))
		}(i)
	}

	wg.Wait()

	assert.Greater(t, index.Len(), 0)
}
