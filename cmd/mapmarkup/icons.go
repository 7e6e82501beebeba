package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OCAP2/mapmarkup/internal/icon"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

var iconsGroup string

var iconsCmd = &cobra.Command{
	Use:   "icons",
	Short: "List the icon taxonomy",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		list := icon.Icons()
		if iconsGroup != "" {
			list = icon.ByGroup(icon.Group(iconsGroup))
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tGROUP\tCOLOR\tLABEL")
		for _, i := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", i.Key, i.Group, i.Color, i.Label)
		}
		w.Flush()
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List drawing categories with their colour and label",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tCOLOR\tLABEL")
		for _, c := range core.Categories {
			m := icon.CategoryMeta(c)
			fmt.Fprintf(w, "%s\t%s\t%s\n", c, m.Color, m.Label)
		}
		w.Flush()
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <resource-kind> <category>",
	Short: "Suggest the icon for a resource",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), icon.Resolve(core.ResourceKind(args[0]), args[1]))
	},
}

func init() {
	rootCmd.AddCommand(iconsCmd, categoriesCmd, resolveCmd)
	iconsCmd.Flags().StringVar(&iconsGroup, "group", "", "Only list icons of this group")
}
