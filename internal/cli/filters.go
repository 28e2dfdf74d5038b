package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFiltersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Show the saved search",
		Args:  cobra.NoArgs,
		RunE:  runFiltersShow,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the saved search",
			Args:  cobra.NoArgs,
			RunE:  runFiltersClear,
		},
		&cobra.Command{
			Use:   "remove <field>",
			Short: "Remove one constraint from the saved search",
			Long:  "Remove one constraint from the saved search. <field> is a tag key as shown by `vitrine filters`; preco clears both price bounds.",
			Args:  cobra.ExactArgs(1),
			RunE:  runFiltersRemove,
		},
	)

	return cmd
}

func runFiltersShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	q, found := a.prefs.LoadQuery(cmd.Context())
	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"salvo":   found,
			"filtros": q,
			"tags":    q.Tags(),
		})
	}
	if !found {
		printf(cmd.OutOrStdout(), "Nenhuma busca salva.\n")
		return nil
	}
	printTags(cmd.OutOrStdout(), q.Tags())
	if q.Sort != "" {
		printf(cmd.OutOrStdout(), "  Ordenação: %s\n", q.Sort)
	}
	return nil
}

func runFiltersClear(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.prefs.ClearQuery(cmd.Context()); err != nil {
		return fmt.Errorf("clearing saved search: %w", err)
	}
	if !isJSON() {
		printf(cmd.OutOrStdout(), "Busca salva removida.\n")
	}
	return nil
}

func runFiltersRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	q, found := a.prefs.LoadQuery(ctx)
	if !found {
		return fmt.Errorf("no saved search")
	}
	q = q.Without(args[0])
	if err := a.prefs.SaveQuery(ctx, q); err != nil {
		return fmt.Errorf("saving search: %w", err)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), q)
	}
	printTags(cmd.OutOrStdout(), q.Tags())
	return nil
}
