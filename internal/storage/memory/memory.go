// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/OCAP2/mapmarkup/internal/config"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

// Backend keeps incident collections in memory and exports each saved
// collection to JSON when an output directory is configured.
type Backend struct {
	cfg       config.MemoryConfig
	incidents map[string][]core.Drawing

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:       cfg,
		incidents: make(map[string][]core.Drawing),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	return os.MkdirAll(b.cfg.OutputDir, 0755)
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// Load returns the collection of an incident. Incidents not seen in this
// process are read from their export file, if any.
func (b *Backend) Load(incident string) ([]core.Drawing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if drawings, ok := b.incidents[incident]; ok {
		return clone(drawings), nil
	}
	if b.cfg.OutputDir == "" {
		return nil, nil
	}

	export, err := b.readExport(incident)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.incidents[incident] = export.Drawings
	return clone(export.Drawings), nil
}

// Save stores the collection and exports it.
func (b *Backend) Save(incident string, drawings []core.Drawing) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.incidents[incident] = clone(drawings)
	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON(incident)
}

// GetExportedFilePath returns the path of the last written export file.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

func clone(drawings []core.Drawing) []core.Drawing {
	if drawings == nil {
		return nil
	}
	out := make([]core.Drawing, len(drawings))
	for i, d := range drawings {
		d.Geometry = core.CloneGeometry(d.Geometry)
		out[i] = d
	}
	return out
}
