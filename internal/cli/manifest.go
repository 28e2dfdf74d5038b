package cli

import (
	"github.com/spf13/cobra"

	"github.com/borghese/vitrine/internal/catalog"
)

func newManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest [site-dir]",
		Short: "Regenerate the site's data manifest",
		Long:  "Scan src/data/imoveis and src/data/empreendimentos under the site directory and rewrite src/data/config/manifest.json.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			switch {
			case len(args) == 1:
				root = args[0]
			case flagSiteDir != "":
				root = flagSiteDir
			}

			m, err := catalog.WriteManifest(root)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), m)
			}
			printf(cmd.OutOrStdout(), "Manifesto gerado: %d imóveis, %d empreendimentos\n",
				len(m.Listings), len(m.Developments))
			return nil
		},
	}
}
