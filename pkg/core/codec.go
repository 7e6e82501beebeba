// pkg/core/codec.go
package core

import (
	"encoding/json"
	"fmt"
)

type drawingAlias Drawing

// drawingJSON carries the geometry next to its kind so it can be decoded back
// into the right variant.
type drawingJSON struct {
	drawingAlias
	Kind     Kind            `json:"kind"`
	Geometry json.RawMessage `json:"geometry"`
}

// MarshalJSON encodes the drawing with a "kind" discriminator and its geometry.
func (d Drawing) MarshalJSON() ([]byte, error) {
	if d.Geometry == nil {
		return nil, fmt.Errorf("drawing %s has no geometry", d.ID)
	}
	g, err := json.Marshal(d.Geometry)
	if err != nil {
		return nil, err
	}
	return json.Marshal(drawingJSON{
		drawingAlias: drawingAlias(d),
		Kind:         d.Geometry.Kind(),
		Geometry:     g,
	})
}

// UnmarshalJSON decodes what MarshalJSON produces.
func (d *Drawing) UnmarshalJSON(b []byte) error {
	var raw drawingJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	g, err := DecodeGeometry(raw.Kind, raw.Geometry)
	if err != nil {
		return fmt.Errorf("drawing %s: %w", raw.ID, err)
	}
	*d = Drawing(raw.drawingAlias)
	d.Geometry = g
	return nil
}

// DecodeGeometry decodes the JSON form of a geometry variant.
func DecodeGeometry(kind Kind, b []byte) (Geometry, error) {
	switch kind {
	case KindMarker:
		var g Marker
		return g, json.Unmarshal(b, &g)
	case KindIcon:
		var g IconMarker
		return g, json.Unmarshal(b, &g)
	case KindCircle:
		var g Circle
		return g, json.Unmarshal(b, &g)
	case KindPolygon:
		var g Polygon
		return g, json.Unmarshal(b, &g)
	case KindPolyline:
		var g Polyline
		return g, json.Unmarshal(b, &g)
	case KindRectangle:
		var g Rectangle
		return g, json.Unmarshal(b, &g)
	default:
		return nil, fmt.Errorf("unknown geometry kind %q", kind)
	}
}
