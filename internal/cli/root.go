// Package cli defines the cobra command tree for vitrine.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	flagFormat  string
	flagConfig  string
	flagDB      string
	flagSiteDir string
	flagSiteURL string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vitrine",
		Short:         "Browse and serve a real-estate site's listings",
		Long:          "Load the listings and developments a real-estate site publishes as JSON, search them, relay contact messages and serve them over an HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ~/.config/vitrine/config.yaml)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.local/share/vitrine/vitrine.db)")
	root.PersistentFlags().StringVar(&flagSiteDir, "site-dir", "", "read site data from this directory")
	root.PersistentFlags().StringVar(&flagSiteURL, "site-url", "", "read site data from this page URL")

	root.AddCommand(
		newSearchCmd(),
		newShowCmd(),
		newDevelopmentsCmd(),
		newDevelopmentCmd(),
		newStatsCmd(),
		newContactCmd(),
		newFiltersCmd(),
		newMessagesCmd(),
		newManifestCmd(),
		newServeCmd(),
		newCacheCmd(),
		newHealthCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// printf writes to w, dropping the byte count.
func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
