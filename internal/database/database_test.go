package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OCAP2/mapmarkup/internal/model"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "db.local")
	viper.Set("db.port", "5433")
	viper.Set("db.username", "u")
	viper.Set("db.password", "p")
	viper.Set("db.database", "mapmarkup")

	assert.Equal(t, "host=db.local port=5433 user=u password=p dbname=mapmarkup sslmode=disable", PostgresDSN())
}

func TestGetSqliteDBStandalone_Migrate(t *testing.T) {
	db, err := GetSqliteDBStandalone(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}

	// migrating twice is a no-op
	assert.NoError(t, Migrate(db))
}

func TestManager_SetupAndDump(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(zerolog.Nop())

	db, err := m.GetSqliteDB(filepath.Join(dir, "live.db"))
	require.NoError(t, err)
	m.DB = db
	require.NoError(t, m.Setup())

	require.NoError(t, m.DB.Create(&model.Incident{Name: "test"}).Error)

	m.SqliteFilePath = filepath.Join(dir, "dump.db")
	require.NoError(t, m.DumpMemoryToDisk())
	_, err = os.Stat(m.SqliteFilePath)
	require.NoError(t, err)

	// dump target is replaced, not appended to
	require.NoError(t, m.DumpMemoryToDisk())

	dumped, err := GetSqliteDBStandalone(m.SqliteFilePath)
	require.NoError(t, err)
	var count int64
	require.NoError(t, dumped.Model(&model.Incident{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := GetSqliteDBStandalone(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}
