package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/mapmarkup/internal/annotator"
	"github.com/OCAP2/mapmarkup/internal/dispatcher"
	"github.com/OCAP2/mapmarkup/internal/metadata"
	"github.com/OCAP2/mapmarkup/internal/util"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

func newTestDispatcher(t *testing.T) (*dispatcher.Dispatcher, *annotator.Session) {
	t.Helper()
	session, err := annotator.New()
	require.NoError(t, err)
	session.SetResources([]core.Resource{
		{ID: "R1", Kind: core.ResourceVehicle, Category: "Ambulancia", Name: "SAMU 3"},
	})

	d, err := dispatcher.New(noopLogger{})
	require.NoError(t, err)
	NewService(Dependencies{Session: session}).RegisterHandlers(d)
	return d, session
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// run dispatches each line the way a scenario file does.
func run(t *testing.T, d *dispatcher.Dispatcher, lines ...string) []any {
	t.Helper()
	results := make([]any, 0, len(lines))
	for _, line := range lines {
		args := util.SplitArgs(line)
		res, err := d.Dispatch(dispatcher.Event{Command: args[0], Args: args[1:]})
		require.NoError(t, err, line)
		results = append(results, res)
	}
	return results
}

func TestRegisterHandlers_AllCommands(t *testing.T) {
	d, _ := newTestDispatcher(t)

	assert.Equal(t, []string{
		"cancel", "cancel-meta", "click", "commit", "commit-edit", "dblclick",
		"delete", "discard-edit", "drag", "edit", "icon", "link", "meta",
		"mode", "place", "radius", "set",
	}, d.Commands())
}

func TestPolygonScenario(t *testing.T) {
	d, session := newTestDispatcher(t)

	results := run(t, d,
		"mode polygon",
		"click 0,0",
		"click 0,1",
		"click 1,1",
		"dblclick 1,0",
		`set name "Zona ""A"" norte"`,
		"set category hazard_zone",
		"set priority high",
		"commit",
	)
	assert.Equal(t, false, results[1])
	assert.Equal(t, true, results[4])

	drawings := session.Drawings()
	require.Len(t, drawings, 1)
	assert.Equal(t, `Zona "A" norte`, drawings[0].Name)
	assert.Equal(t, core.CategoryHazardZone, drawings[0].Category)
	assert.Equal(t, core.PriorityHigh, drawings[0].Priority)
	assert.Len(t, drawings[0].Geometry.(core.Polygon).Vertices, 4)

	committed, ok := results[8].(core.Drawing)
	require.True(t, ok)
	assert.Equal(t, drawings[0].ID, committed.ID)
}

func TestSetJoinsUnquotedWords(t *testing.T) {
	d, session := newTestDispatcher(t)

	run(t, d, "mode marker", "click 1,2", "set name Punto de encuentro", "commit")
	assert.Equal(t, "Punto de encuentro", session.Drawings()[0].Name)
}

func TestPlaceAndEditScenario(t *testing.T) {
	d, session := newTestDispatcher(t)

	run(t, d, "place R1", "click -33.45,-70.66", "commit")
	drawings := session.Drawings()
	require.Len(t, drawings, 1)
	id := drawings[0].ID
	assert.Equal(t, "R1", drawings[0].ResourceID)
	assert.Equal(t, "SAMU 3", drawings[0].Name)

	// the same resource cannot be placed twice
	_, err := d.Dispatch(dispatcher.Event{Command: "place", Args: []string{"R1"}})
	var dup *metadata.DuplicateLinkError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, id, dup.DrawingID)

	run(t, d, "edit "+id, "drag 0 -33.5,-70.7", "commit-edit")
	assert.Equal(t, core.Point{Lat: -33.5, Lng: -70.7}, session.Drawings()[0].Geometry.(core.IconMarker).Point)

	run(t, d, "meta "+id, "link", "set name Base", "commit")
	assert.Empty(t, session.Drawings()[0].ResourceID)

	run(t, d, "delete "+id)
	assert.Empty(t, session.Drawings())
}

func TestCircleRadiusScenario(t *testing.T) {
	d, session := newTestDispatcher(t)

	run(t, d, "mode circle", "click 0,0", "click 0,0.01", "set name C", "commit")
	id := session.Drawings()[0].ID

	run(t, d, "edit "+id, "radius 250", "commit-edit")
	assert.Equal(t, 250.0, session.Drawings()[0].Geometry.(core.Circle).RadiusMeters)

	run(t, d, "edit "+id, "radius 900", "discard-edit")
	assert.Equal(t, 250.0, session.Drawings()[0].Geometry.(core.Circle).RadiusMeters)
}

func TestCancelCommands(t *testing.T) {
	d, session := newTestDispatcher(t)

	run(t, d, "mode polyline", "click 0,0", "cancel")
	_, pending := session.Sketch()
	assert.Empty(t, pending)

	run(t, d, "mode marker", "click 1,1", "cancel-meta", "mode")
	assert.Empty(t, session.Drawings())
	_, open := session.Form()
	assert.False(t, open)
}

func TestIconCommand(t *testing.T) {
	d, session := newTestDispatcher(t)

	run(t, d, "icon fire_truck", "click 1,1", "set name Bomba", "commit")
	assert.Equal(t, core.IconFireTruck, session.Drawings()[0].Geometry.(core.IconMarker).Icon)
}

func TestArgumentErrors(t *testing.T) {
	d, _ := newTestDispatcher(t)

	tests := []struct {
		name string
		cmd  string
		args []string
	}{
		{"click without point", "click", nil},
		{"click bad point", "click", []string{"north"}},
		{"click out of range", "click", []string{"91,0"}},
		{"dblclick bad point", "dblclick", []string{"x"}},
		{"drag missing point", "drag", []string{"0"}},
		{"drag bad index", "drag", []string{"first", "0,0"}},
		{"radius not a number", "radius", []string{"big"}},
		{"unknown mode", "mode", []string{"hexagon"}},
		{"unknown icon", "icon", []string{"spaceship"}},
		{"place unknown resource", "place", []string{"R404"}},
		{"edit unknown drawing", "edit", []string{"nope"}},
		{"set without open form", "set", []string{"name", "x"}},
		{"delete without id", "delete", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Dispatch(dispatcher.Event{Command: tt.cmd, Args: tt.args})
			assert.Error(t, err)
		})
	}
}

func TestMissingArgsError(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(dispatcher.Event{Command: "meta"})
	assert.ErrorIs(t, err, ErrMissingArgs)
}
