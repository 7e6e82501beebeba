package geo

import (
	"fmt"
	"math"
	"strings"

	"github.com/OCAP2/mapmarkup/pkg/core"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371008.8

// DistanceFunc returns the distance in meters between two points.
type DistanceFunc func(a, b core.Point) float64

const (
	ModeGreatCircle = "greatcircle"
	ModePlanar      = "planar"
)

// GreatCircle is the spherical distance between a and b.
func GreatCircle(a, b core.Point) float64 {
	angle := s2.LatLngFromDegrees(a.Lat, a.Lng).Distance(s2.LatLngFromDegrees(b.Lat, b.Lng))
	return angle.Radians() * EarthRadiusMeters
}

// Planar measures in Web Mercator and corrects the scale at the mean latitude.
// Only meaningful for small extents.
func Planar(a, b core.Point) float64 {
	ax, ay := Project3857(a)
	bx, by := Project3857(b)
	scale := math.Cos((a.Lat + b.Lat) / 2 * math.Pi / 180)
	return math.Hypot(bx-ax, by-ay) * scale
}

// DistanceFor returns the distance function for a configured mode name.
func DistanceFor(mode string) (DistanceFunc, error) {
	switch strings.ToLower(mode) {
	case "", ModeGreatCircle:
		return GreatCircle, nil
	case ModePlanar:
		return Planar, nil
	default:
		return nil, fmt.Errorf("unknown distance mode: %s", mode)
	}
}
