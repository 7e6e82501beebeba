package cache

import (
	"sort"
	"sync"

	"github.com/OCAP2/mapmarkup/pkg/core"
)

// ResourceCache holds the externally owned resource list the session offers for
// linking. The engine never mutates resources, it only replaces the whole list.
type ResourceCache struct {
	m         sync.Mutex
	Resources map[string]core.Resource
}

func NewResourceCache() *ResourceCache {
	return &ResourceCache{
		m:         sync.Mutex{},
		Resources: make(map[string]core.Resource),
	}
}

// Replace swaps the cached list for rs
func (c *ResourceCache) Replace(rs []core.Resource) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Resources = make(map[string]core.Resource, len(rs))
	for _, r := range rs {
		c.Resources[r.ID] = r
	}
}

func (c *ResourceCache) Get(id string) (core.Resource, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if r, ok := c.Resources[id]; ok {
		return r, true
	}
	return core.Resource{}, false
}

// List returns the resources sorted by kind, then name
func (c *ResourceCache) List() []core.Resource {
	c.m.Lock()
	out := make([]core.Resource, 0, len(c.Resources))
	for _, r := range c.Resources {
		out = append(out, r)
	}
	c.m.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
