package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/borghese/vitrine/internal/property"
)

type searchFlags struct {
	typ, transaction, development, text, sort string
	developmentID                             int64
	neighborhoods                             []string
	priceMin, priceMax, areaMin               float64
	bedrooms, bathrooms, parking              int
	save, saved                               bool
}

func newSearchCmd() *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search available listings",
		Long: `Search the site's available listings. Flags mirror the site's search form.
With --saved the last saved search is used as the starting point; with
--save the resulting search is remembered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.typ, "tipo", "", "listing type (apartamento|casa|terreno|comercial)")
	fl.StringVar(&f.transaction, "transacao", "", "transaction (venda|aluguel)")
	fl.StringVar(&f.development, "empreendimento", "", "development name")
	fl.Int64Var(&f.developmentID, "empreendimento-id", 0, "development ID")
	fl.StringSliceVar(&f.neighborhoods, "bairro", nil, "neighborhood (repeatable)")
	fl.Float64Var(&f.priceMin, "preco-min", 0, "minimum price")
	fl.Float64Var(&f.priceMax, "preco-max", 0, "maximum price")
	fl.Float64Var(&f.areaMin, "area-min", 0, "minimum area in m²")
	fl.IntVar(&f.bedrooms, "quartos", 0, "minimum bedrooms")
	fl.IntVar(&f.bathrooms, "banheiros", 0, "minimum bathrooms")
	fl.IntVar(&f.parking, "vagas", 0, "minimum parking spaces")
	fl.StringVar(&f.text, "busca", "", "text to find in title, description, neighborhood or city")
	fl.StringVar(&f.sort, "ordenacao", "", "sort (preco-asc|preco-desc|area-asc|area-desc|recentes)")
	fl.BoolVar(&f.save, "save", false, "remember this search")
	fl.BoolVar(&f.saved, "saved", false, "start from the last saved search")

	return cmd
}

// buildQuery layers the flags the user set over base.
func buildQuery(cmd *cobra.Command, f searchFlags, base property.Query) property.Query {
	q := base
	changed := cmd.Flags().Changed

	if changed("tipo") {
		q.Type = property.Type(f.typ)
	}
	if changed("transacao") {
		q.Transaction = property.Transaction(f.transaction)
	}
	if changed("empreendimento") {
		q.DevelopmentName = f.development
	}
	if changed("empreendimento-id") {
		q.DevelopmentID = &f.developmentID
	}
	if changed("bairro") {
		q.Neighborhoods = f.neighborhoods
	}
	if changed("preco-min") {
		q.PriceMin = &f.priceMin
	}
	if changed("preco-max") {
		q.PriceMax = &f.priceMax
	}
	if changed("area-min") {
		q.AreaMin = &f.areaMin
	}
	if changed("quartos") {
		q.MinBedrooms = &f.bedrooms
	}
	if changed("banheiros") {
		q.MinBathrooms = &f.bathrooms
	}
	if changed("vagas") {
		q.MinParking = &f.parking
	}
	if changed("busca") {
		q.Text = f.text
	}
	if changed("ordenacao") {
		q.Sort = property.SortKey(f.sort)
	}
	return q
}

func runSearch(cmd *cobra.Command, f searchFlags) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()

	var base property.Query
	if f.saved {
		base, _ = a.prefs.LoadQuery(ctx)
	}
	q := buildQuery(cmd, f, base)

	listings, err := a.loader.Search(ctx, q)
	if err != nil {
		return err
	}

	if f.save {
		if err := a.prefs.SaveQuery(ctx, q); err != nil {
			return fmt.Errorf("saving search: %w", err)
		}
		slog.Debug("search saved", "tags", len(q.Tags()))
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, listings)
	}
	if tags := q.Tags(); len(tags) > 0 {
		printf(out, "Filtros:\n")
		printTags(out, tags)
		printf(out, "\n")
	}
	return printListingTable(out, listings)
}
