package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/OCAP2/mapmarkup/pkg/core"
	"github.com/wroge/wgs84"
)

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ParsePoint parses a "lat,lng" string, optionally wrapped in brackets, into a
// core.Point. Latitude must be within [-90, 90] and longitude within [-180, 180].
func ParsePoint(coords string) (core.Point, error) {
	coords = strings.TrimSpace(coords)
	coords = strings.TrimPrefix(coords, "[")
	coords = strings.TrimSuffix(coords, "]")

	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return core.Point{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Point{}, ErrInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Point{}, ErrInvalidCoordinates
	}
	p := core.Point{Lat: lat, Lng: lng}
	if !Valid(p) {
		return core.Point{}, ErrInvalidCoordinates
	}
	return p, nil
}

// Valid reports whether p lies within WGS84 bounds.
func Valid(p core.Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Project3857 converts a WGS84 point to Web Mercator meters.
func Project3857(p core.Point) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(p.Lng, p.Lat, 0)
	return x, y
}
