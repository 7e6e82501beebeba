// internal/storage/storage.go
package storage

import "github.com/OCAP2/mapmarkup/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Load returns the committed collection of an incident, in order. An
	// unknown incident yields an empty collection.
	Load(incident string) ([]core.Drawing, error)
	// Save replaces the stored collection of an incident with drawings.
	Save(incident string, drawings []core.Drawing) error
}

// Historian is an optional interface for backends that keep a per-change
// history next to the current collection.
type Historian interface {
	RecordChange(incident string, revision int, action string, d core.Drawing) error
}

// Exportable is an optional interface for backends that write the collection
// to a file.
type Exportable interface {
	GetExportedFilePath() string
}
