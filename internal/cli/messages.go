package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/borghese/vitrine/internal/inbox"
)

func newMessagesCmd() *cobra.Command {
	var (
		limit       int
		undelivered bool
	)

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List recorded contact messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			var msgs []*inbox.Message
			if undelivered {
				msgs, err = a.inbox.Undelivered(cmd.Context())
			} else {
				msgs, err = a.inbox.List(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), msgs)
			}
			printMessages(cmd.OutOrStdout(), msgs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum messages to list")
	cmd.Flags().BoolVar(&undelivered, "undelivered", false, "only messages the relay did not accept")

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid message ID: %s", args[0])
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.inbox.Delete(cmd.Context(), id); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"id":      id,
					"removed": true,
				})
			}
			printf(cmd.OutOrStdout(), "Mensagem #%d removida.\n", id)
			return nil
		},
	})

	return cmd
}
