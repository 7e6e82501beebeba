package convert

import (
	"testing"
	"time"

	"github.com/OCAP2/mapmarkup/internal/model"
	"github.com/OCAP2/mapmarkup/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDrawing(g core.Geometry) core.Drawing {
	at := time.Date(2024, 8, 14, 10, 30, 0, 0, time.UTC)
	return core.Drawing{
		ID:            "d-1",
		Geometry:      g,
		Name:          "Foco norte",
		Category:      core.CategoryHazardZone,
		Description:   "avanza al norte",
		ResourcesNote: "2 brigadas",
		Priority:      core.PriorityCritical,
		Color:         "#dc2626",
		ResourceID:    "R7",
		CreatedAt:     at,
		UpdatedAt:     at.Add(time.Minute),
	}
}

func TestDrawingRoundTrip(t *testing.T) {
	geoms := []core.Geometry{
		core.Marker{Point: core.Point{Lat: -33.45, Lng: -70.66}},
		core.IconMarker{Point: core.Point{Lat: -33.4, Lng: -70.6}, Icon: core.IconAmbulance},
		core.Circle{Center: core.Point{Lat: -33.45, Lng: -70.66}, RadiusMeters: 500},
		core.Polygon{Vertices: []core.Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}}},
		core.Polyline{Vertices: []core.Point{{Lat: 0, Lng: 0}, {Lat: 2, Lng: 2}}},
		core.Rectangle{Corner1: core.Point{Lat: 2, Lng: 3}, Corner2: core.Point{Lat: 0, Lng: 0}},
	}

	for _, g := range geoms {
		t.Run(string(g.Kind()), func(t *testing.T) {
			in := sampleDrawing(g)
			m, err := CoreToDrawing(4, 2, in)
			require.NoError(t, err)

			assert.Equal(t, uint(4), m.IncidentID)
			assert.Equal(t, 2, m.Position)
			assert.Equal(t, string(g.Kind()), m.Kind)
			assert.NotEmpty(t, m.Geometry)

			out, err := DrawingToCore(m)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestCoreToDrawing_KindColumns(t *testing.T) {
	m, err := CoreToDrawing(1, 0, sampleDrawing(core.Circle{RadiusMeters: 120}))
	require.NoError(t, err)
	assert.Equal(t, 120.0, m.RadiusMeters)
	assert.Empty(t, m.Icon)

	m, err = CoreToDrawing(1, 0, sampleDrawing(core.IconMarker{Icon: core.IconFireTruck}))
	require.NoError(t, err)
	assert.Equal(t, "fire_truck", m.Icon)
	assert.Zero(t, m.RadiusMeters)
}

func TestCoreToDrawing_NoGeometry(t *testing.T) {
	_, err := CoreToDrawing(1, 0, core.Drawing{ID: "x"})
	assert.Error(t, err)
}

func TestDrawingToCore_BadWKB(t *testing.T) {
	_, err := DrawingToCore(model.Drawing{ID: "x", Kind: "marker", Geometry: []byte{0x01, 0x02}})
	assert.ErrorContains(t, err, "drawing x")
}

func TestDrawingStateRoundTrip(t *testing.T) {
	in := sampleDrawing(core.Polyline{Vertices: []core.Point{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}})
	at := time.Date(2024, 8, 14, 11, 0, 0, 0, time.UTC)

	s, err := CoreToDrawingState(3, 17, "update", in, at)
	require.NoError(t, err)
	assert.Equal(t, uint(3), s.IncidentID)
	assert.Equal(t, 17, s.Revision)
	assert.Equal(t, "update", s.Action)
	assert.Equal(t, "d-1", s.DrawingID)
	assert.Equal(t, at, s.Time)

	out, err := DrawingStateToCore(s)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDrawingStateToCore_BadSnapshot(t *testing.T) {
	_, err := DrawingStateToCore(model.DrawingState{ID: 9, Snapshot: []byte("{")})
	assert.Error(t, err)
}
