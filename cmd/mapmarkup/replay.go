package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OCAP2/mapmarkup/internal/annotator"
	"github.com/OCAP2/mapmarkup/internal/builder"
	"github.com/OCAP2/mapmarkup/internal/config"
	"github.com/OCAP2/mapmarkup/internal/dispatcher"
	"github.com/OCAP2/mapmarkup/internal/geo"
	"github.com/OCAP2/mapmarkup/internal/handlers"
	"github.com/OCAP2/mapmarkup/internal/influx"
	"github.com/OCAP2/mapmarkup/internal/metadata"
	"github.com/OCAP2/mapmarkup/internal/render"
	"github.com/OCAP2/mapmarkup/internal/scenario"
	"github.com/OCAP2/mapmarkup/internal/storage"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

var (
	replayStrict bool
	replayExport string
)

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Replay a scenario against the incident and persist the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayStrict, "strict", false, "Stop at the first failing step")
	replayCmd.Flags().StringVarP(&replayExport, "export", "o", "", "Write the final collection as GeoJSON to this file")
}

func runReplay(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	incident := sc.Incident
	if incident == "" {
		incident = config.GetString("incident")
	}

	a, err := newApp(incident)
	if err != nil {
		return err
	}
	defer a.Close()

	backend, err := storage.NewBackend(config.GetStorageConfig(), a.zlog)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	a.onClose(backend.Close)

	existing, err := backend.Load(incident)
	if err != nil {
		return fmt.Errorf("failed to load incident %q: %w", incident, err)
	}

	d, err := dispatcher.New(a.logger)
	if err != nil {
		return err
	}
	// drain queued persist events before the backend closes
	a.onClose(func() error { d.Close(); return nil })

	persister := &handlers.Persister{Incident: incident, Backend: backend, Logger: a.logger}
	if config.GetBool("influx.enabled") {
		im := influx.NewManager(a.zlog, a.backupPath())
		if err := im.Connect(); err != nil {
			a.logger.Warn("activity recording disabled", "error", err)
		} else {
			persister.Activity = im
			a.onClose(im.Close)
		}
	}
	persister.RegisterHandlers(d)

	session, err := newSession(a, existing, persister.OnChange(d))
	if err != nil {
		return err
	}
	session.SetResources(sc.Resources)
	a.session = session
	handlers.NewService(handlers.Dependencies{Session: session, Logger: a.logger}).RegisterHandlers(d)

	results, runErr := scenario.Run(d, sc.Steps, replayStrict)
	d.Close()

	out := cmd.OutOrStdout()
	for _, r := range scenario.Failed(results) {
		fmt.Fprintf(out, "line %d: %s: %v\n", r.Line, r.Input, r.Err)
	}
	fmt.Fprintf(out, "%s: %d steps, %d failed, %d drawings, revision %d\n",
		incident, len(results), len(scenario.Failed(results)), len(session.Drawings()), session.Revision())
	if e, ok := backend.(storage.Exportable); ok && e.GetExportedFilePath() != "" {
		fmt.Fprintf(out, "saved to %s\n", e.GetExportedFilePath())
	}

	if replayExport != "" {
		overlays, err := session.Overlays()
		if err != nil {
			return err
		}
		if err := writeCollection(replayExport, render.FeatureCollection(overlays)); err != nil {
			return err
		}
	}
	return runErr
}

// newSession builds an annotation session configured from the engine settings.
func newSession(a *app, drawings []core.Drawing, onChange annotator.ChangeFunc) (*annotator.Session, error) {
	eng := config.GetEngineConfig()
	dist, err := geo.DistanceFor(eng.DistanceMode)
	if err != nil {
		return nil, err
	}
	return annotator.New(
		annotator.WithLogger(a.logger),
		annotator.WithDrawings(drawings),
		annotator.WithBuilder(builder.New(
			builder.WithDistance(dist),
			builder.WithPolygonMinVertices(eng.PolygonMinVertices),
		)),
		annotator.WithMetadata(metadata.New(metadata.WithDefaultPriority(core.Priority(eng.DefaultPriority)))),
		annotator.WithAdapter(render.GeoJSONAdapter{}),
		annotator.WithOnChange(onChange),
	)
}
