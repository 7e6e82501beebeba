package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/mapmarkup/internal/geo"
	"github.com/OCAP2/mapmarkup/internal/model"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

// DrawingToCore converts a GORM Drawing back to a core.Drawing.
func DrawingToCore(m model.Drawing) (core.Drawing, error) {
	g, err := geo.UnmarshalWKB(core.Kind(m.Kind), m.Geometry, m.RadiusMeters, core.IconKey(m.Icon))
	if err != nil {
		return core.Drawing{}, fmt.Errorf("drawing %s: %w", m.ID, err)
	}
	return core.Drawing{
		ID:            m.ID,
		Geometry:      g,
		Name:          m.Name,
		Category:      core.Category(m.Category),
		Description:   m.Description,
		ResourcesNote: m.ResourcesNote,
		Priority:      core.Priority(m.Priority),
		Color:         m.Color,
		ResourceID:    m.ResourceID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// DrawingStateToCore decodes the snapshot of a history row.
func DrawingStateToCore(s model.DrawingState) (core.Drawing, error) {
	var d core.Drawing
	if err := json.Unmarshal(s.Snapshot, &d); err != nil {
		return core.Drawing{}, fmt.Errorf("drawing state %d: %w", s.ID, err)
	}
	return d, nil
}
