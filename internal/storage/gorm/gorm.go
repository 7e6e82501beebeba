// Package gormstorage implements the storage.Backend interface on top of GORM.
// It serves both the Postgres and the SQLite configurations.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/mapmarkup/internal/database"
	"github.com/OCAP2/mapmarkup/internal/model"
	"github.com/OCAP2/mapmarkup/internal/model/convert"
	"github.com/OCAP2/mapmarkup/pkg/core"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dependencies holds everything the GORM backend needs.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// Backend persists drawings in the drawings table and their change history in
// drawing_states.
type Backend struct {
	deps Dependencies

	mu        sync.Mutex
	incidents map[string]uint // incident name -> incidents.id
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps:      deps,
		incidents: make(map[string]uint),
	}
}

// DB exposes the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gorm backend has no database")
	}
	return database.Migrate(b.deps.DB)
}

// Close closes the underlying connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load returns the drawings of an incident in collection order.
func (b *Backend) Load(incident string) ([]core.Drawing, error) {
	var inc model.Incident
	err := b.deps.DB.Where("name = ?", incident).First(&inc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load incident %s: %w", incident, err)
	}

	var rows []model.Drawing
	if err := b.deps.DB.Where("incident_id = ?", inc.ID).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load drawings: %w", err)
	}

	out := make([]core.Drawing, 0, len(rows))
	for _, row := range rows {
		d, err := convert.DrawingToCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Save upserts every drawing and removes the incident's rows that are no
// longer in the collection, in one transaction.
func (b *Backend) Save(incident string, drawings []core.Drawing) error {
	start := time.Now()
	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		incidentID, err := b.incidentID(tx, incident)
		if err != nil {
			return err
		}

		rows := make([]model.Drawing, 0, len(drawings))
		ids := make([]string, 0, len(drawings))
		for i, d := range drawings {
			row, err := convert.CoreToDrawing(incidentID, i, d)
			if err != nil {
				return err
			}
			rows = append(rows, row)
			ids = append(ids, d.ID)
		}

		stale := tx.Where("incident_id = ?", incidentID)
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		if err := stale.Delete(&model.Drawing{}).Error; err != nil {
			return fmt.Errorf("failed to delete removed drawings: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&rows).Error
	})
	if err != nil {
		b.forget(incident)
		return fmt.Errorf("failed to save incident %s: %w", incident, err)
	}

	b.deps.Logger.Debug().
		Str("incident", incident).
		Int("drawings", len(drawings)).
		Dur("duration", time.Since(start)).
		Msg("Saved drawings")
	return nil
}

// RecordChange appends a history row for a committed change.
func (b *Backend) RecordChange(incident string, revision int, action string, d core.Drawing) error {
	incidentID, err := b.incidentID(b.deps.DB, incident)
	if err != nil {
		return err
	}
	state, err := convert.CoreToDrawingState(incidentID, revision, action, d, time.Now())
	if err != nil {
		return err
	}
	if err := b.deps.DB.Omit(clause.Associations).Create(&state).Error; err != nil {
		return fmt.Errorf("failed to record drawing state: %w", err)
	}
	return nil
}

// History returns the recorded changes of an incident ordered by revision.
func (b *Backend) History(incident string) ([]model.DrawingState, error) {
	var states []model.DrawingState
	err := b.deps.DB.
		Joins("JOIN incidents ON incidents.id = drawing_states.incident_id").
		Where("incidents.name = ?", incident).
		Order("drawing_states.revision, drawing_states.id").
		Find(&states).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return states, nil
}

// incidentID returns the id of the named incident, creating the row on first use.
func (b *Backend) incidentID(tx *gorm.DB, name string) (uint, error) {
	b.mu.Lock()
	id, ok := b.incidents[name]
	b.mu.Unlock()
	if ok {
		return id, nil
	}

	inc := model.Incident{Name: name}
	if err := tx.Where(model.Incident{Name: name}).FirstOrCreate(&inc).Error; err != nil {
		return 0, fmt.Errorf("failed to get incident %s: %w", name, err)
	}

	b.mu.Lock()
	b.incidents[name] = inc.ID
	b.mu.Unlock()
	return inc.ID, nil
}

// forget drops a cached incident id whose creating transaction rolled back.
func (b *Backend) forget(name string) {
	b.mu.Lock()
	delete(b.incidents, name)
	b.mu.Unlock()
}
