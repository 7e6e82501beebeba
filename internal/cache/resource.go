package cache

import (
	"sync"

	"github.com/OCAP2/mapmarkup/pkg/core"
)

// ResourceIndex maps resource IDs to the ID of the drawing that references them
type ResourceIndex struct {
	mu    sync.RWMutex
	links map[string]string
}

// NewResourceIndex creates a new ResourceIndex
func NewResourceIndex() *ResourceIndex {
	return &ResourceIndex{
		links: make(map[string]string),
	}
}

// Get retrieves the drawing ID linked to a resource
func (c *ResourceIndex) Get(resourceID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.links[resourceID]
	return id, ok
}

// Rebuild replaces the index with the links found in drawings
func (c *ResourceIndex) Rebuild(drawings []core.Drawing) {
	links := make(map[string]string, len(drawings))
	for _, d := range drawings {
		if d.ResourceID != "" {
			links[d.ResourceID] = d.ID
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = links
}

// Len returns the number of linked resources
func (c *ResourceIndex) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.links)
}
