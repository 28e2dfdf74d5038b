package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/borghese/vitrine/internal/client"
)

// newServerClient returns a client for the running server named in the
// config.
func newServerClient() (*client.Client, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	return client.New(cfg.Server.URL), cfg.Server.URL, nil
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage a running server's document cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop the running server's cached documents",
		Long:  "Ask the running server to drop its cached documents, so edits to the site's JSON show up before the cache expires.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, url, err := newServerClient()
			if err != nil {
				return err
			}
			if err := c.ClearCache(cmd.Context()); err != nil {
				return fmt.Errorf("clearing cache at %s: %w", url, err)
			}
			if !isJSON() {
				printf(cmd.OutOrStdout(), "Cache limpo em %s\n", url)
			}
			return nil
		},
	})

	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, url, err := newServerClient()
			if err != nil {
				return err
			}
			if err := c.Health(cmd.Context()); err != nil {
				return fmt.Errorf("checking %s: %w", url, err)
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]string{"status": "ok", "url": url})
			}
			printf(cmd.OutOrStdout(), "%s: ok\n", url)
			return nil
		},
	}
}
