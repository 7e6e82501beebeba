// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/OCAP2/mapmarkup/internal/geo"
	"github.com/OCAP2/mapmarkup/internal/model"
	"github.com/OCAP2/mapmarkup/pkg/core"
	"gorm.io/datatypes"
)

// CoreToDrawing converts a core.Drawing to a GORM model.Drawing.
// position is the index of the drawing in its incident collection.
func CoreToDrawing(incidentID uint, position int, d core.Drawing) (model.Drawing, error) {
	wkb, err := geo.MarshalWKB(d.Geometry)
	if err != nil {
		return model.Drawing{}, fmt.Errorf("drawing %s: %w", d.ID, err)
	}

	m := model.Drawing{
		ID:            d.ID,
		IncidentID:    incidentID,
		Position:      position,
		Kind:          string(d.Geometry.Kind()),
		Geometry:      wkb,
		Name:          d.Name,
		Category:      string(d.Category),
		Description:   d.Description,
		ResourcesNote: d.ResourcesNote,
		Priority:      string(d.Priority),
		Color:         d.Color,
		ResourceID:    d.ResourceID,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	switch g := d.Geometry.(type) {
	case core.Circle:
		m.RadiusMeters = g.RadiusMeters
	case core.IconMarker:
		m.Icon = string(g.Icon)
	}
	return m, nil
}

// CoreToDrawingState builds a history row for a committed change.
func CoreToDrawingState(incidentID uint, revision int, action string, d core.Drawing, at time.Time) (model.DrawingState, error) {
	snapshot, err := json.Marshal(d)
	if err != nil {
		return model.DrawingState{}, err
	}
	return model.DrawingState{
		Time:       at,
		IncidentID: incidentID,
		Revision:   revision,
		Action:     action,
		DrawingID:  d.ID,
		Snapshot:   datatypes.JSON(snapshot),
	}, nil
}
