package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show listing details",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid listing ID: %s", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	l, found, err := a.loader.ListingByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("listing %d not found", id)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), l)
	}
	printListingSummary(cmd.OutOrStdout(), l)
	return nil
}
