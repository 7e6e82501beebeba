package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/OCAP2/mapmarkup/internal/config"
	"github.com/OCAP2/mapmarkup/internal/render"
	"github.com/OCAP2/mapmarkup/internal/storage"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export [incident]",
	Short: "Export the stored drawings of an incident as a GeoJSON FeatureCollection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		incident := config.GetString("incident")
		if len(args) == 1 {
			incident = args[0]
		}

		backend, err := storage.NewBackend(config.GetStorageConfig(), zerolog.Nop())
		if err != nil {
			return err
		}
		if err := backend.Init(); err != nil {
			return fmt.Errorf("failed to init storage: %w", err)
		}
		defer backend.Close()

		drawings, err := backend.Load(incident)
		if err != nil {
			return fmt.Errorf("failed to load incident %q: %w", incident, err)
		}
		overlays, err := render.All(render.GeoJSONAdapter{}, drawings, "", nil)
		if err != nil {
			return err
		}
		fc := render.FeatureCollection(overlays)

		if exportOut == "" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fc)
		}
		return writeCollection(exportOut, fc)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output file (default stdout)")
}

func writeCollection(path string, fc render.Collection) error {
	b, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
