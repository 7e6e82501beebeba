// internal/storage/storage_test.go
package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/OCAP2/mapmarkup/internal/config"
	"github.com/OCAP2/mapmarkup/internal/storage"
	gormstorage "github.com/OCAP2/mapmarkup/internal/storage/gorm"
	"github.com/OCAP2/mapmarkup/internal/storage/memory"
	sqlitestorage "github.com/OCAP2/mapmarkup/internal/storage/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks
var (
	_ storage.Backend    = (*memory.Backend)(nil)
	_ storage.Exportable = (*memory.Backend)(nil)
	_ storage.Backend    = (*gormstorage.Backend)(nil)
	_ storage.Historian  = (*gormstorage.Backend)(nil)
	_ storage.Backend    = (*sqlitestorage.Backend)(nil)
	_ storage.Historian  = (*sqlitestorage.Backend)(nil)
)

func TestNewBackend_Memory(t *testing.T) {
	b, err := storage.NewBackend(config.StorageConfig{Type: "memory"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)
}

func TestNewBackend_SQLite(t *testing.T) {
	b, err := storage.NewBackend(config.StorageConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "d.db")},
	}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())
	defer b.Close()

	_, ok := b.(storage.Historian)
	assert.True(t, ok)
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := storage.NewBackend(config.StorageConfig{Type: "s3"}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown storage type: s3")
}
