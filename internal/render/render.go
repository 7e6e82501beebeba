// Package render turns drawings into map overlays. The engine only depends on
// the Adapter interface; GeoJSONAdapter is the reference implementation used by
// the CLI export and by tests.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/mapmarkup/internal/geo"
	"github.com/OCAP2/mapmarkup/internal/icon"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

// Adapter renders one drawing. handles is non-empty only while the drawing is
// in an active edit session and lists the draggable vertices in index order.
type Adapter interface {
	Render(d core.Drawing, handles []core.Point) (Overlay, error)
}

// Popup is the read-only summary shown when a drawing is selected
type Popup struct {
	Name          string        `json:"name"`
	CategoryLabel string        `json:"categoryLabel"`
	Description   string        `json:"description,omitempty"`
	ResourcesNote string        `json:"resourcesNote,omitempty"`
	Priority      core.Priority `json:"priority"`
}

// Properties of a rendered feature
type Properties struct {
	Kind         core.Kind    `json:"kind"`
	Color        string       `json:"color"`
	Icon         core.IconKey `json:"icon,omitempty"`
	IconLabel    string       `json:"iconLabel,omitempty"`
	RadiusMeters float64      `json:"radiusMeters,omitempty"`
	ResourceID   string       `json:"resourceId,omitempty"`
	Popup        Popup        `json:"popup"`
	Handles      []core.Point `json:"handles,omitempty"`
	Editing      bool         `json:"editing,omitempty"`
}

// Overlay is a GeoJSON Feature
type Overlay struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties Properties      `json:"properties"`
}

// Collection is a GeoJSON FeatureCollection
type Collection struct {
	Type     string    `json:"type"`
	Features []Overlay `json:"features"`
}

// FeatureCollection bundles overlays for export
func FeatureCollection(overlays []Overlay) Collection {
	if overlays == nil {
		overlays = []Overlay{}
	}
	return Collection{Type: "FeatureCollection", Features: overlays}
}

// GeoJSONAdapter renders drawings as GeoJSON features. Circles are exported as
// their center point with the radius as a property, rectangles as polygons.
type GeoJSONAdapter struct{}

func (GeoJSONAdapter) Render(d core.Drawing, handles []core.Point) (Overlay, error) {
	g, err := geo.ToGeometry(d.Geometry)
	if err != nil {
		return Overlay{}, fmt.Errorf("render drawing %s: %w", d.ID, err)
	}
	raw, err := g.MarshalJSON()
	if err != nil {
		return Overlay{}, fmt.Errorf("encode drawing %s: %w", d.ID, err)
	}

	props := Properties{
		Kind:       d.Kind(),
		Color:      d.Color,
		ResourceID: d.ResourceID,
		Popup: Popup{
			Name:          d.Name,
			CategoryLabel: icon.CategoryMeta(d.Category).Label,
			Description:   d.Description,
			ResourcesNote: d.ResourcesNote,
			Priority:      d.Priority,
		},
	}
	if props.Color == "" {
		props.Color = icon.CategoryMeta(d.Category).Color
	}

	switch g := d.Geometry.(type) {
	case core.IconMarker:
		props.Icon = g.Icon
		if info, ok := icon.Lookup(g.Icon); ok {
			props.IconLabel = info.Label
			props.Color = info.Color
		}
	case core.Circle:
		props.RadiusMeters = g.RadiusMeters
	}

	if len(handles) > 0 {
		props.Editing = true
		props.Handles = append([]core.Point(nil), handles...)
	}

	return Overlay{Type: "Feature", ID: d.ID, Geometry: raw, Properties: props}, nil
}

// All renders every drawing with a, attaching handles to editingID only.
func All(a Adapter, drawings []core.Drawing, editingID string, handles []core.Point) ([]Overlay, error) {
	out := make([]Overlay, 0, len(drawings))
	for _, d := range drawings {
		var h []core.Point
		if d.ID == editingID {
			h = handles
		}
		o, err := a.Render(d, h)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
