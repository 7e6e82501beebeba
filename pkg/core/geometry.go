// pkg/core/geometry.go
package core

import "math"

// Point is a WGS84 latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Kind identifies the shape variant of a Geometry. It never changes after a
// Drawing is created.
type Kind string

const (
	KindMarker    Kind = "marker"
	KindIcon      Kind = "icon"
	KindCircle    Kind = "circle"
	KindPolygon   Kind = "polygon"
	KindPolyline  Kind = "polyline"
	KindRectangle Kind = "rectangle"
)

// Geometry is the shape payload of a Drawing. The set of implementations is
// closed: Marker, IconMarker, Circle, Polygon, Polyline and Rectangle.
type Geometry interface {
	Kind() Kind
	// Handles returns the editable control points in handle-index order.
	Handles() []Point
	sealed()
}

// Marker is a plain point marker
type Marker struct {
	Point Point `json:"point"`
}

// IconMarker is a point marker rendered with a taxonomy icon
type IconMarker struct {
	Point Point   `json:"point"`
	Icon  IconKey `json:"icon"`
}

// Circle is a center plus radius in meters
type Circle struct {
	Center       Point   `json:"center"`
	RadiusMeters float64 `json:"radiusMeters"`
}

// Polygon is a closed area; the ring is implicitly closed, the first vertex is
// not repeated at the end.
type Polygon struct {
	Vertices []Point `json:"vertices"`
}

// Polyline is an open path
type Polyline struct {
	Vertices []Point `json:"vertices"`
}

// Rectangle is defined by two opposite corners, in the order they were placed.
type Rectangle struct {
	Corner1 Point `json:"corner1"`
	Corner2 Point `json:"corner2"`
}

func (Marker) Kind() Kind     { return KindMarker }
func (IconMarker) Kind() Kind { return KindIcon }
func (Circle) Kind() Kind     { return KindCircle }
func (Polygon) Kind() Kind    { return KindPolygon }
func (Polyline) Kind() Kind   { return KindPolyline }
func (Rectangle) Kind() Kind  { return KindRectangle }

func (g Marker) Handles() []Point     { return []Point{g.Point} }
func (g IconMarker) Handles() []Point { return []Point{g.Point} }
func (g Circle) Handles() []Point     { return []Point{g.Center} }
func (g Polygon) Handles() []Point    { return clonePoints(g.Vertices) }
func (g Polyline) Handles() []Point   { return clonePoints(g.Vertices) }
func (g Rectangle) Handles() []Point  { return []Point{g.Corner1, g.Corner2} }

func (Marker) sealed()     {}
func (IconMarker) sealed() {}
func (Circle) sealed()     {}
func (Polygon) sealed()    {}
func (Polyline) sealed()   {}
func (Rectangle) sealed()  {}

// Bounds returns the south-west and north-east corners of the rectangle.
func (g Rectangle) Bounds() (sw, ne Point) {
	sw = Point{Lat: math.Min(g.Corner1.Lat, g.Corner2.Lat), Lng: math.Min(g.Corner1.Lng, g.Corner2.Lng)}
	ne = Point{Lat: math.Max(g.Corner1.Lat, g.Corner2.Lat), Lng: math.Max(g.Corner1.Lng, g.Corner2.Lng)}
	return sw, ne
}

// CloneGeometry returns a copy of g that shares no vertex storage with it.
func CloneGeometry(g Geometry) Geometry {
	switch g := g.(type) {
	case Polygon:
		return Polygon{Vertices: clonePoints(g.Vertices)}
	case Polyline:
		return Polyline{Vertices: clonePoints(g.Vertices)}
	default:
		// remaining variants are plain values
		return g
	}
}

// IsColorEditable reports whether the user may override the category colour for
// the given kind. Point-like kinds always use the category or icon colour.
func IsColorEditable(k Kind) bool {
	switch k {
	case KindPolygon, KindCircle, KindRectangle:
		return true
	default:
		return false
	}
}

func clonePoints(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}
