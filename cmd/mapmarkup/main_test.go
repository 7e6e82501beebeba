package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/mapmarkup/internal/config"
	"github.com/OCAP2/mapmarkup/internal/render"
)

const replayScenario = `
incident: Sierra norte
resources:
  - id: bomba-12
    kind: vehicle
    category: fire
    name: Bomba 12
steps:
  - mode marker
  - click -33.45,-70.66
  - set name "Puesto de mando"
  - link bomba-12
  - commit
  - mode circle
  - click -33.40,-70.60
  - click -33.40,-70.59
  - set name "Zona de peligro"
  - set category hazard_zone
  - commit
  - bogus
`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		replayStrict, replayExport, exportOut = false, "", ""
	})
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func setupWorkspace(t *testing.T) (cfgDir, scenarioPath, drawingsDir string) {
	t.Helper()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	drawingsDir = filepath.Join(dir, "drawings")
	cfg := fmt.Sprintf(`{"logsDir": %q, "storage": {"type": "memory", "memory": {"outputDir": %q}}}`,
		filepath.Join(dir, "logs"), drawingsDir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))

	scenarioPath = filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(replayScenario), 0o644))
	return dir, scenarioPath, drawingsDir
}

func TestReplayThenExport(t *testing.T) {
	cfgDir, scenarioPath, drawingsDir := setupWorkspace(t)
	geojson := filepath.Join(t.TempDir(), "out.geojson")

	out := execute(t, "replay", "--config", cfgDir, "-o", geojson, scenarioPath)
	assert.Contains(t, out, "line 12: bogus")
	assert.Contains(t, out, "Sierra norte: 12 steps, 1 failed, 2 drawings, revision 2")
	assert.Contains(t, out, "saved to "+filepath.Join(drawingsDir, "Sierra_norte.json"))

	b, err := os.ReadFile(geojson)
	require.NoError(t, err)
	var fc render.Collection
	require.NoError(t, json.Unmarshal(b, &fc))
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "bomba-12", fc.Features[0].Properties.ResourceID)
	assert.Greater(t, fc.Features[1].Properties.RadiusMeters, 0.0)
	assert.Equal(t, "Zona de peligro", fc.Features[1].Properties.Popup.Name)

	out = execute(t, "export", "--config", cfgDir, "Sierra norte")
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	assert.Len(t, fc.Features, 2)
}

func TestReplayStrictFails(t *testing.T) {
	cfgDir, scenarioPath, _ := setupWorkspace(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"replay", "--config", cfgDir, "--strict", scenarioPath})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		replayStrict = false
	})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 12")
}

func TestCategoriesAndResolve(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()

	out := execute(t, "categories", "--config", dir)
	assert.Contains(t, out, "hazard_zone")
	assert.Contains(t, out, "medical_area")

	out = execute(t, "resolve", "--config", dir, "vehicle", "Ambulancia SAMU")
	assert.Equal(t, "ambulance\n", out)
}

func TestPublish(t *testing.T) {
	var features string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/incidents/publish" {
			_ = r.ParseMultipartForm(1 << 20)
			features = r.FormValue("features")
			_, _ = w.Write([]byte(`{"id":"inc-1","url":"http://map/inc-1","features":2}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfgDir, scenarioPath, _ := setupWorkspace(t)
	execute(t, "replay", "--config", cfgDir, scenarioPath)

	viper.Set("api.serverUrl", server.URL)
	out := execute(t, "publish", "--config", cfgDir, "Sierra norte")
	assert.Contains(t, out, "published 2 drawings of Sierra norte")
	assert.Contains(t, out, "http://map/inc-1")
	assert.Equal(t, "2", features)
}
