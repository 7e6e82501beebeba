// pkg/core/drawing.go
package core

import "time"

// Category classifies a Drawing. Each category carries a default colour and a
// display label, see internal/icon.
type Category string

const (
	CategoryHazardZone      Category = "hazard_zone"
	CategorySafeZone        Category = "safe_zone"
	CategoryEvacuationRoute Category = "evacuation_route"
	CategoryStagingArea     Category = "staging_area"
	CategoryWaterSource     Category = "water_source"
	CategoryFireLine        Category = "fire_line"
	CategoryAccessPoint     Category = "access_point"
	CategoryRestrictedArea  Category = "restricted_area"
	CategoryMedicalArea     Category = "medical_area"
	CategoryOther           Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryHazardZone,
	CategorySafeZone,
	CategoryEvacuationRoute,
	CategoryStagingArea,
	CategoryWaterSource,
	CategoryFireLine,
	CategoryAccessPoint,
	CategoryRestrictedArea,
	CategoryMedicalArea,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority of a Drawing
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Drawing is a persisted map annotation: a Geometry plus descriptive metadata.
type Drawing struct {
	ID            string    `json:"id"`
	Geometry      Geometry  `json:"-"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	Description   string    `json:"description,omitempty"`
	ResourcesNote string    `json:"resourcesNote,omitempty"`
	Priority      Priority  `json:"priority"`
	Color         string    `json:"color"`
	ResourceID    string    `json:"resourceId,omitempty"` // empty when not linked
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Kind returns the geometry kind, or "" when the drawing has no geometry.
func (d Drawing) Kind() Kind {
	if d.Geometry == nil {
		return ""
	}
	return d.Geometry.Kind()
}

// IndexOf returns the position of the drawing with the given id, or -1.
func IndexOf(drawings []Drawing, id string) int {
	for i := range drawings {
		if drawings[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the drawing with the given id.
func Find(drawings []Drawing, id string) (Drawing, bool) {
	if i := IndexOf(drawings, id); i >= 0 {
		return drawings[i], true
	}
	return Drawing{}, false
}

// FindByResource returns the drawing linked to resourceID, if any.
func FindByResource(drawings []Drawing, resourceID string) (Drawing, bool) {
	if resourceID == "" {
		return Drawing{}, false
	}
	for _, d := range drawings {
		if d.ResourceID == resourceID {
			return d, true
		}
	}
	return Drawing{}, false
}

// ReplaceByID returns a new collection in which the entry with d.ID is replaced
// by d. The input slice is not modified. ok is false when no entry matches.
func ReplaceByID(drawings []Drawing, d Drawing) (out []Drawing, ok bool) {
	i := IndexOf(drawings, d.ID)
	if i < 0 {
		return drawings, false
	}
	out = make([]Drawing, len(drawings))
	copy(out, drawings)
	out[i] = d
	return out, true
}

// Append returns a new collection with d added at the end.
func Append(drawings []Drawing, d Drawing) []Drawing {
	out := make([]Drawing, len(drawings), len(drawings)+1)
	copy(out, drawings)
	return append(out, d)
}

// RemoveByID returns a new collection without the entry with the given id.
func RemoveByID(drawings []Drawing, id string) (out []Drawing, ok bool) {
	i := IndexOf(drawings, id)
	if i < 0 {
		return drawings, false
	}
	out = make([]Drawing, 0, len(drawings)-1)
	out = append(out, drawings[:i]...)
	return append(out, drawings[i+1:]...), true
}
