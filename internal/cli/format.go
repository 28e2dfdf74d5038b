package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/borghese/vitrine/internal/inbox"
	"github.com/borghese/vitrine/internal/property"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printListingSummary prints a single listing in text format.
func printListingSummary(w io.Writer, l property.Listing) {
	printf(w, "Imóvel #%d\n", l.ID)
	printf(w, "  Título:     %s\n", l.Title)
	printf(w, "  Tipo:       %s (%s)\n", l.Type.Label(), l.Transaction.Label())
	printf(w, "  Preço:      %s\n", formatPrice(l.Price))
	printf(w, "  Endereço:   %s\n", l.Address)
	printf(w, "  Quartos:    %d\n", l.Features.Bedrooms)
	printf(w, "  Banheiros:  %d\n", l.Features.Bathrooms)
	printf(w, "  Vagas:      %d\n", l.Features.Parking)
	printf(w, "  Área:       %s\n", formatArea(l.Features.Area))
	if l.DevelopmentName != "" {
		printf(w, "  Empreend.:  %s\n", l.DevelopmentName)
	}
	if !l.Available {
		printf(w, "  Situação:   indisponível\n")
	}
	if l.Description != "" {
		printf(w, "\n  %s\n", l.Description)
	}
}

// printListingTable prints listings as a formatted table.
func printListingTable(w io.Writer, listings []property.Listing) error {
	if len(listings) == 0 {
		printf(w, "Nenhum imóvel encontrado.\n")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTÍTULO\tTIPO\tPREÇO\tQTS\tÁREA\tBAIRRO"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "--\t------\t----\t-----\t---\t----\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, l := range listings {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			l.ID, truncate(l.Title, 36), l.Type.Label(), formatPrice(l.Price),
			l.Features.Bedrooms, formatArea(l.Features.Area), l.Address.Neighborhood); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	printf(w, "\nTotal: %d imóveis\n", len(listings))
	return nil
}

// printDevelopmentTable prints developments as a formatted table.
func printDevelopmentTable(w io.Writer, devs []property.Development) error {
	if len(devs) == 0 {
		printf(w, "Nenhum empreendimento encontrado.\n")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tSLUG\tNOME\tSTATUS\tUNIDADES"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, d := range devs {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n",
			d.ID, d.Slug, truncate(d.Name, 36), d.Features.Status.Label(), d.Features.Units); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return tw.Flush()
}

// printDevelopmentSummary prints a single development in text format.
func printDevelopmentSummary(w io.Writer, d property.Development) {
	printf(w, "Empreendimento #%d (%s)\n", d.ID, d.Slug)
	printf(w, "  Nome:       %s\n", d.Name)
	printf(w, "  Status:     %s\n", d.Features.Status.Label())
	printf(w, "  Endereço:   %s\n", d.Address)
	if d.Features.Units > 0 {
		printf(w, "  Unidades:   %d\n", d.Features.Units)
	}
	if d.Features.Towers > 0 {
		printf(w, "  Torres:     %d\n", d.Features.Towers)
	}
	if len(d.Amenities) > 0 {
		printf(w, "  Lazer:      %s\n", strings.Join(d.Amenities, ", "))
	}
	if d.Description != "" {
		printf(w, "\n  %s\n", d.Description)
	}
}

// printStats prints catalog statistics in text format.
func printStats(w io.Writer, s property.Stats) {
	printf(w, "Imóveis:       %d (%d disponíveis)\n", s.Total, s.Available)
	printf(w, "Preço médio:   %s\n", formatPrice(float64(s.AveragePrice)))
	for _, t := range property.Transactions {
		printf(w, "  %-12s %d\n", t.Label()+":", s.ByTransaction[t])
	}
	for _, t := range property.Types {
		printf(w, "  %-12s %d\n", t.Label()+":", s.ByType[t])
	}
}

// printTags prints the active constraints of a search, one per line.
func printTags(w io.Writer, tags []property.Tag) {
	if len(tags) == 0 {
		printf(w, "Nenhum filtro ativo.\n")
		return
	}
	for _, t := range tags {
		printf(w, "  [%s] %s\n", t.Key, t.Label)
	}
}

// printMessages prints recorded contact messages in text format.
func printMessages(w io.Writer, msgs []*inbox.Message) {
	if len(msgs) == 0 {
		printf(w, "Nenhuma mensagem.\n")
		return
	}

	for _, m := range msgs {
		status := "entregue"
		if !m.Delivered {
			status = "falhou"
		}
		printf(w, "[%s, %s] #%d %s <%s> via %s (%s)\n  %s\n\n",
			m.CreatedAt.Format("2006-01-02 15:04"), humanize.Time(m.CreatedAt),
			m.ID, m.Name, m.Email, m.Relay, status, m.Body)
	}
}

// formatPrice formats a BRL amount with dot thousands separators,
// rounded to whole reais.
func formatPrice(reais float64) string {
	return "R$ " + humanize.FormatInteger("#.###,", int(math.Round(reais)))
}

// formatArea formats an area in square metres.
func formatArea(m2 float64) string {
	return strconv.FormatFloat(m2, 'f', -1, 64) + " m²"
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
