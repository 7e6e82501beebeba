package geo

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/mapmarkup/pkg/core"
)

// ParsePath parses a JSON array of coordinates into a list of points.
// Input format: "[[lat1,lng1],[lat2,lng2],...]"
func ParsePath(input string) ([]core.Point, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse path JSON: %w", err)
	}

	if len(coords) == 0 {
		return nil, fmt.Errorf("path must have at least 1 point")
	}

	path := make([]core.Point, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		p := core.Point{Lat: coord[0], Lng: coord[1]}
		if !Valid(p) {
			return nil, fmt.Errorf("coordinate %d: %w", i, ErrInvalidCoordinates)
		}
		path[i] = p
	}

	return path, nil
}
