package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OCAP2/mapmarkup/internal/api"
	"github.com/OCAP2/mapmarkup/internal/config"
	"github.com/OCAP2/mapmarkup/internal/render"
	"github.com/OCAP2/mapmarkup/internal/storage"
)

var publishCmd = &cobra.Command{
	Use:   "publish [incident]",
	Short: "Upload the stored drawings of an incident to the map web frontend",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		incident := config.GetString("incident")
		if len(args) == 1 {
			incident = args[0]
		}

		a, err := newApp(incident)
		if err != nil {
			return err
		}
		defer a.Close()

		client := api.New(config.GetString("api.serverUrl"), config.GetString("api.apiKey"))
		if err := client.Healthcheck(cmd.Context()); err != nil {
			return err
		}

		backend, err := storage.NewBackend(config.GetStorageConfig(), a.zlog)
		if err != nil {
			return err
		}
		if err := backend.Init(); err != nil {
			return fmt.Errorf("failed to init storage: %w", err)
		}
		a.onClose(backend.Close)

		drawings, err := backend.Load(incident)
		if err != nil {
			return fmt.Errorf("failed to load incident %q: %w", incident, err)
		}
		overlays, err := render.All(render.GeoJSONAdapter{}, drawings, "", nil)
		if err != nil {
			return err
		}
		collection, err := json.Marshal(render.FeatureCollection(overlays))
		if err != nil {
			return fmt.Errorf("failed to encode collection: %w", err)
		}

		receipt, err := client.Publish(cmd.Context(), incident, collection)
		if err != nil {
			return err
		}
		a.logger.Info("incident published", "drawings", receipt.Features, "id", receipt.ID, "url", receipt.URL)
		fmt.Fprintf(cmd.OutOrStdout(), "published %d drawings of %s\n", receipt.Features, incident)
		if receipt.URL != "" {
			fmt.Fprintln(cmd.OutOrStdout(), receipt.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
