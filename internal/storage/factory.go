// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/OCAP2/mapmarkup/internal/config"
	"github.com/OCAP2/mapmarkup/internal/database"
	gormstorage "github.com/OCAP2/mapmarkup/internal/storage/gorm"
	"github.com/OCAP2/mapmarkup/internal/storage/memory"
	sqlitestorage "github.com/OCAP2/mapmarkup/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		m := database.NewManager(log)
		if err := m.Connect(); err != nil {
			return nil, err
		}
		if m.ShouldSaveLocal {
			log.Warn().Msg("Postgres unavailable, drawings are kept in an in-memory SQLite DB")
		}
		return gormstorage.New(gormstorage.Dependencies{DB: m.DB, Logger: log}), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			Path:         cfg.SQLite.Path,
			DumpInterval: cfg.SQLite.DumpInterval,
		}, log)
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
