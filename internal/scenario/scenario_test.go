package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/mapmarkup/internal/annotator"
	"github.com/OCAP2/mapmarkup/internal/dispatcher"
	"github.com/OCAP2/mapmarkup/internal/handlers"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

const sample = `
incident: Incendio forestal Sierra
resources:
  - id: bomba-12
    kind: vehicle
    category: fire_line
    name: Bomba 12
    status: available
steps:
  - "# command post"
  - mode marker
  - click -33.45,-70.66
  - set name "Puesto de mando"
  - commit
  - ""
  - mode polygon
  - click -33.40,-70.60
  - click -33.41,-70.61
  - dblclick -33.42,-70.60
  - set name "Frente norte"
  - set category fire_line
  - set priority high
  - commit
`

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func newDispatcher(t *testing.T) (*dispatcher.Dispatcher, *annotator.Session) {
	t.Helper()
	session, err := annotator.New()
	require.NoError(t, err)
	d, err := dispatcher.New(noopLogger{})
	require.NoError(t, err)
	handlers.NewService(handlers.Dependencies{Session: session}).RegisterHandlers(d)
	return d, session
}

func TestParse(t *testing.T) {
	s, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "Incendio forestal Sierra", s.Incident)
	require.Len(t, s.Resources, 1)
	assert.Equal(t, core.Resource{ID: "bomba-12", Kind: core.ResourceVehicle, Category: "fire_line", Name: "Bomba 12", Status: "available"}, s.Resources[0])
	assert.Len(t, s.Steps, 14)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"unknown key", "incident: a\nlayers: []\n"},
		{"resource without id", "resources:\n  - name: Bomba\n"},
		{"not yaml", "steps: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Incendio forestal Sierra", s.Incident)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	s, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	d, session := newDispatcher(t)

	results, err := Run(d, s.Steps, true)
	require.NoError(t, err)
	assert.Len(t, results, 12)
	assert.Empty(t, Failed(results))

	drawings := session.Drawings()
	require.Len(t, drawings, 2)
	assert.Equal(t, "Puesto de mando", drawings[0].Name)
	assert.Equal(t, core.KindPolygon, drawings[1].Kind())
	assert.Equal(t, "Frente norte", drawings[1].Name)
	assert.Equal(t, core.CategoryFireLine, drawings[1].Category)
	assert.Equal(t, core.PriorityHigh, drawings[1].Priority)
}

func TestRun_Strict(t *testing.T) {
	steps := []string{"mode marker", "bogus", "click 1,1"}

	d, session := newDispatcher(t)
	results, err := Run(d, steps, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 2")
	assert.Len(t, results, 2)
	_, open := session.Form()
	assert.False(t, open)

	d, session = newDispatcher(t)
	results, err = Run(d, steps, false)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].Line)
	_, open = session.Form()
	assert.True(t, open)
}
