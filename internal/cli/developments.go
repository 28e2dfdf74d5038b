package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/borghese/vitrine/internal/property"
)

func newDevelopmentsCmd() *cobra.Command {
	var featured bool

	cmd := &cobra.Command{
		Use:   "developments",
		Short: "List developments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			var devs []property.Development
			if featured {
				devs, err = a.loader.FeaturedDevelopments(cmd.Context())
			} else {
				devs, err = a.loader.LoadAllDevelopments(cmd.Context())
			}
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), devs)
			}
			return printDevelopmentTable(cmd.OutOrStdout(), devs)
		},
	}

	cmd.Flags().BoolVar(&featured, "featured", false, "only featured, available developments")

	return cmd
}

func newDevelopmentCmd() *cobra.Command {
	var units bool

	cmd := &cobra.Command{
		Use:   "development <id|slug>",
		Short: "Show a development",
		Long:  "Show a development by numeric ID or slug, optionally with its listed units.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			dev, found, err := a.loader.DevelopmentByKey(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("development %q not found", args[0])
			}

			var listings []property.Listing
			if units {
				listings, err = a.loader.DevelopmentUnits(ctx, dev.ID)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				if !units {
					return printJSON(out, dev)
				}
				return printJSON(out, map[string]interface{}{
					"empreendimento": dev,
					"unidades":       listings,
				})
			}

			printDevelopmentSummary(out, dev)
			if units {
				printf(out, "\n")
				return printListingTable(out, listings)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&units, "units", false, "also list the development's units")

	return cmd
}
