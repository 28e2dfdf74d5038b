package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/borghese/vitrine/internal/property"
	"github.com/borghese/vitrine/internal/source"
)

func TestListingByID(t *testing.T) {
	l := newTestLoader(t, newMemSource(siteDocs()))
	ctx := context.Background()

	li, found, err := l.ListingByID(ctx, 2)
	if err != nil {
		t.Fatalf("ListingByID: %v", err)
	}
	if !found || li.ID != 2 {
		t.Errorf("got found=%v id=%d, want listing 2", found, li.ID)
	}

	_, found, err = l.ListingByID(ctx, 99)
	if err != nil {
		t.Fatalf("ListingByID: %v", err)
	}
	if found {
		t.Error("expected not found for id 99")
	}
}

func TestListingByIDLoadFailure(t *testing.T) {
	l := newTestLoader(t, newMemSource(map[string]string{}))

	_, found, err := l.ListingByID(context.Background(), 1)
	if err == nil {
		t.Fatal("expected load error, got nil")
	}
	if found {
		t.Error("found must be false on error")
	}
}

func TestDevelopmentByKey(t *testing.T) {
	l := newTestLoader(t, newMemSource(siteDocs()))
	ctx := context.Background()

	tests := []struct {
		key       string
		wantFound bool
		wantSlug  string
	}{
		{"10", true, "residencial-aurora"},
		{"brisa-do-mar", true, "brisa-do-mar"},
		{"99", false, ""},
		{"inexistente", false, ""},
		{"10-torre", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d, found, err := l.DevelopmentByKey(ctx, tt.key)
			if err != nil {
				t.Fatalf("DevelopmentByKey: %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if d.Slug != tt.wantSlug {
				t.Errorf("slug = %q, want %q", d.Slug, tt.wantSlug)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	l := newTestLoader(t, newMemSource(siteDocs()))
	ctx := context.Background()

	ids := func(listings []property.Listing) []int64 {
		out := []int64{}
		for _, li := range listings {
			out = append(out, li.ID)
		}
		return out
	}

	all, err := l.Search(ctx, property.Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2}, ids(all)); diff != "" {
		t.Errorf("empty query should return available listings in load order (-want +got):\n%s", diff)
	}

	desc, err := l.Search(ctx, property.Query{Sort: property.SortPriceDesc})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if diff := cmp.Diff([]int64{2, 1}, ids(desc)); diff != "" {
		t.Errorf("price desc mismatch (-want +got):\n%s", diff)
	}

	// Sorting a search must not reorder the cached aggregate.
	again, err := l.LoadAllListings(ctx)
	if err != nil {
		t.Fatalf("LoadAllListings: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2, 3}, ids(again)); diff != "" {
		t.Errorf("aggregate reordered by search (-want +got):\n%s", diff)
	}
}

func TestStatistics(t *testing.T) {
	l := newTestLoader(t, newMemSource(siteDocs()))

	got, err := l.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if got.Total != 3 || got.Available != 2 {
		t.Errorf("total=%d available=%d, want 3 and 2", got.Total, got.Available)
	}
	if got.ByTransaction[property.TransactionSale] != 2 || got.ByTransaction[property.TransactionRent] != 0 {
		t.Errorf("by transaction = %v", got.ByTransaction)
	}
	if got.AveragePrice != 275000 {
		t.Errorf("AveragePrice = %d, want 275000", got.AveragePrice)
	}
}

func TestStatisticsEmptyCatalog(t *testing.T) {
	l := newTestLoader(t, newMemSource(map[string]string{
		ManifestPath: `{"imoveis": [], "empreendimentos": []}`,
	}))

	got, err := l.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if got.Total != 0 || got.Available != 0 || got.AveragePrice != 0 {
		t.Errorf("got %+v, want zeros", got)
	}
}

func TestFeatured(t *testing.T) {
	l := newTestLoader(t, newMemSource(siteDocs()))
	ctx := context.Background()

	// Odd ids are featured; listing 3 is featured but unavailable.
	listings, err := l.FeaturedListings(ctx)
	if err != nil {
		t.Fatalf("FeaturedListings: %v", err)
	}
	if len(listings) != 1 || listings[0].ID != 1 {
		t.Errorf("featured listings = %+v, want only listing 1", listings)
	}

	devs, err := l.FeaturedDevelopments(ctx)
	if err != nil {
		t.Fatalf("FeaturedDevelopments: %v", err)
	}
	if len(devs) != 1 || devs[0].ID != 10 {
		t.Errorf("featured developments = %+v, want only development 10", devs)
	}
}

func TestDevelopmentUnits(t *testing.T) {
	docs := siteDocs()
	docs["src/data/imoveis/2.json"] = `{
		"id": 2, "titulo": "Unidade 204", "tipo": "apartamento", "transacao": "venda", "preco": 350000,
		"caracteristicas": {"area": 60}, "disponivel": true,
		"empreendimentoId": 10, "empreendimento": "Residencial Aurora"
	}`
	l := newTestLoader(t, newMemSource(docs))

	units, err := l.DevelopmentUnits(context.Background(), 10)
	if err != nil {
		t.Fatalf("DevelopmentUnits: %v", err)
	}
	if len(units) != 1 || units[0].ID != 2 {
		t.Errorf("units = %+v, want only listing 2", units)
	}
}

func TestLoadFilterConfig(t *testing.T) {
	docs := siteDocs()
	docs[FilterConfigPath] = `{"bairros": ["Centro", "Campeche"]}`
	l := newTestLoader(t, newMemSource(docs))

	cfg, err := l.LoadFilterConfig(context.Background())
	if err != nil {
		t.Fatalf("LoadFilterConfig: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"bairros": []any{"Centro", "Campeche"}}, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFilterConfigNull(t *testing.T) {
	l := newTestLoader(t, newMemSource(map[string]string{FilterConfigPath: `null`}))

	cfg, err := l.LoadFilterConfig(context.Background())
	if err != nil {
		t.Fatalf("LoadFilterConfig: %v", err)
	}
	if cfg == nil || len(cfg) != 0 {
		t.Errorf("got %v, want empty object", cfg)
	}
}

func TestLoadFilterConfigMissing(t *testing.T) {
	l := newTestLoader(t, newMemSource(map[string]string{}))

	_, err := l.LoadFilterConfig(context.Background())
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
}

func writeSiteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWriteManifestAndLoadFromDirectory(t *testing.T) {
	root := t.TempDir()
	writeSiteFile(t, root, "src/data/imoveis/b.json", listingJSON(2, 350000, true))
	writeSiteFile(t, root, "src/data/imoveis/a.json", listingJSON(1, 200000, true))
	writeSiteFile(t, root, "src/data/imoveis/notes.txt", "ignored")
	writeSiteFile(t, root, "src/data/empreendimentos/aurora.json", `{"id": 10, "slug": "aurora"}`)

	m, err := WriteManifest(root)
	if err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	want := property.Manifest{
		Listings:     []string{"src/data/imoveis/a.json", "src/data/imoveis/b.json"},
		Developments: []string{"src/data/empreendimentos/aurora.json"},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}

	// A page under /pages/ reaches the data through "../".
	src, err := source.NewDirSource(root, "/pages/imoveis.html")
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}
	l := New(src, source.NewResolver("/pages/imoveis.html"))

	listings, err := l.LoadAllListings(context.Background())
	if err != nil {
		t.Fatalf("LoadAllListings: %v", err)
	}
	if len(listings) != 2 || listings[0].ID != 1 {
		t.Errorf("listings = %+v", listings)
	}
}

func TestBuildManifestEmptySite(t *testing.T) {
	m, err := BuildManifest(t.TempDir())
	if err != nil {
		t.Fatalf("BuildManifest: %v", err)
	}
	if len(m.Listings) != 0 || len(m.Developments) != 0 {
		t.Errorf("got %+v, want empty manifest", m)
	}
}
