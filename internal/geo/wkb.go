package geo

import (
	"errors"
	"fmt"

	"github.com/OCAP2/mapmarkup/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Shapes are stored as WGS84 geometries with X=longitude, Y=latitude.
// Circles are stored as their center point, the radius travels separately.
// Rectangles are stored as a closed ring starting at Corner1 so that ring[0] and
// ring[2] give back the original corners.

// ErrShapeMismatch is returned when a stored geometry does not fit its kind
var ErrShapeMismatch = errors.New("stored geometry does not match drawing kind")

// ToGeometry converts a drawing geometry to a simplefeatures geometry.
// Validation is disabled: a sketch may repeat a vertex or self-intersect.
func ToGeometry(g core.Geometry) (geom.Geometry, error) {
	switch g := g.(type) {
	case core.Marker:
		return pointGeom(g.Point)
	case core.IconMarker:
		return pointGeom(g.Point)
	case core.Circle:
		return pointGeom(g.Center)
	case core.Polyline:
		if len(g.Vertices) < 2 {
			return geom.Geometry{}, fmt.Errorf("polyline needs 2 vertices, got %d", len(g.Vertices))
		}
		ls, err := geom.NewLineString(sequence(g.Vertices, false), geom.DisableAllValidations)
		if err != nil {
			return geom.Geometry{}, fmt.Errorf("error building polyline: %w", err)
		}
		return ls.AsGeometry(), nil
	case core.Polygon:
		if len(g.Vertices) < 3 {
			return geom.Geometry{}, fmt.Errorf("polygon needs 3 vertices, got %d", len(g.Vertices))
		}
		return polygonGeom(g.Vertices)
	case core.Rectangle:
		return polygonGeom([]core.Point{
			g.Corner1,
			{Lat: g.Corner1.Lat, Lng: g.Corner2.Lng},
			g.Corner2,
			{Lat: g.Corner2.Lat, Lng: g.Corner1.Lng},
		})
	default:
		return geom.Geometry{}, fmt.Errorf("unsupported geometry %T", g)
	}
}

// FromGeometry rebuilds a drawing geometry of the given kind. radius and icon are
// only used for circles and icon markers respectively.
func FromGeometry(kind core.Kind, g geom.Geometry, radius float64, icon core.IconKey) (core.Geometry, error) {
	switch kind {
	case core.KindMarker, core.KindIcon, core.KindCircle:
		if g.Type() != geom.TypePoint {
			return nil, fmt.Errorf("%s: %w", kind, ErrShapeMismatch)
		}
		c, ok := g.MustAsPoint().Coordinates()
		if !ok {
			return nil, fmt.Errorf("%s: empty point: %w", kind, ErrShapeMismatch)
		}
		p := core.Point{Lat: c.Y, Lng: c.X}
		switch kind {
		case core.KindIcon:
			return core.IconMarker{Point: p, Icon: icon}, nil
		case core.KindCircle:
			return core.Circle{Center: p, RadiusMeters: radius}, nil
		default:
			return core.Marker{Point: p}, nil
		}
	case core.KindPolyline:
		if g.Type() != geom.TypeLineString {
			return nil, fmt.Errorf("%s: %w", kind, ErrShapeMismatch)
		}
		return core.Polyline{Vertices: points(g.MustAsLineString().Coordinates(), false)}, nil
	case core.KindPolygon, core.KindRectangle:
		if g.Type() != geom.TypePolygon {
			return nil, fmt.Errorf("%s: %w", kind, ErrShapeMismatch)
		}
		ring := points(g.MustAsPolygon().ExteriorRing().Coordinates(), true)
		if kind == core.KindPolygon {
			return core.Polygon{Vertices: ring}, nil
		}
		if len(ring) != 4 {
			return nil, fmt.Errorf("rectangle ring has %d corners: %w", len(ring), ErrShapeMismatch)
		}
		return core.Rectangle{Corner1: ring[0], Corner2: ring[2]}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

// MarshalWKB encodes a drawing geometry as WKB.
func MarshalWKB(g core.Geometry) ([]byte, error) {
	sf, err := ToGeometry(g)
	if err != nil {
		return nil, err
	}
	return sf.AsBinary(), nil
}

// UnmarshalWKB decodes WKB written by MarshalWKB. Geometries are not validated:
// users may legitimately draw self-intersecting or degenerate shapes.
func UnmarshalWKB(kind core.Kind, wkb []byte, radius float64, icon core.IconKey) (core.Geometry, error) {
	sf, err := geom.UnmarshalWKB(wkb, geom.DisableAllValidations)
	if err != nil {
		return nil, fmt.Errorf("error decoding WKB: %w", err)
	}
	return FromGeometry(kind, sf, radius, icon)
}

func pointGeom(p core.Point) (geom.Geometry, error) {
	pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: p.Lng, Y: p.Lat}, Type: geom.DimXY}, geom.DisableAllValidations)
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("error building point: %w", err)
	}
	return pt.AsGeometry(), nil
}

// polygonGeom closes the ring over pts
func polygonGeom(pts []core.Point) (geom.Geometry, error) {
	ring, err := geom.NewLineString(sequence(pts, true), geom.DisableAllValidations)
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("error building ring: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ring}, geom.DisableAllValidations)
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("error building polygon: %w", err)
	}
	return poly.AsGeometry(), nil
}

func sequence(pts []core.Point, closed bool) geom.Sequence {
	flat := make([]float64, 0, (len(pts)+1)*2)
	for _, p := range pts {
		flat = append(flat, p.Lng, p.Lat)
	}
	if closed {
		flat = append(flat, pts[0].Lng, pts[0].Lat)
	}
	return geom.NewSequence(flat, geom.DimXY)
}

func points(seq geom.Sequence, closed bool) []core.Point {
	n := seq.Length()
	if closed && n > 0 {
		n--
	}
	out := make([]core.Point, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		out[i] = core.Point{Lat: xy.Y, Lng: xy.X}
	}
	return out
}
