package property

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T { return &v }

// catalog is a small fixture with distinct prices and areas.
func catalog() []Listing {
	return []Listing{
		{
			ID: 1, Title: "Apartamento garden", Description: "Perto da praia",
			Type: TypeApartment, Transaction: TransactionSale, Price: 420000,
			Address:  Address{Neighborhood: "Campeche", City: "Florianópolis"},
			Features: Features{Bedrooms: 2, Bathrooms: 1, Parking: 1, Area: 70},
			Available: true, DevelopmentID: ptr(int64(10)), DevelopmentName: "Residencial Aurora",
		},
		{
			ID: 2, Title: "Casa com piscina", Description: "Quintal amplo",
			Type: TypeHouse, Transaction: TransactionSale, Price: 980000,
			Address:  Address{Neighborhood: "Lagoa", City: "Florianópolis"},
			Features: Features{Bedrooms: 4, Bathrooms: 3, Parking: 2, Area: 210},
			Available: true,
		},
		{
			ID: 3, Title: "Sala comercial", Description: "Centro empresarial",
			Type: TypeCommercial, Transaction: TransactionRent, Price: 3500,
			Address:  Address{Neighborhood: "Centro", City: "São José"},
			Features: Features{Bathrooms: 1, Area: 45},
			Available: true,
		},
		{
			ID: 4, Title: "Cobertura duplex", Description: "VISTA MAR",
			Type: TypeApartment, Transaction: TransactionRent, Price: 7800,
			Address:  Address{Neighborhood: "Jurerê", City: "Florianópolis"},
			Features: Features{Bedrooms: 3, Bathrooms: 3, Parking: 2, Area: 160},
			Available: true, DevelopmentID: ptr(int64(10)), DevelopmentName: "Residencial Aurora",
		},
		{
			ID: 5, Title: "Terreno plano", Description: "Loteamento",
			Type: TypeLand, Transaction: TransactionSale, Price: 250000,
			Address:  Address{Neighborhood: "Campeche", City: "Florianópolis"},
			Features: Features{Area: 360},
			Available: true,
		},
	}
}

func ids(listings []Listing) []int64 {
	out := make([]int64, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []int64
	}{
		{"empty query keeps load order", Query{}, []int64{1, 2, 3, 4, 5}},
		{"type", Query{Type: TypeApartment}, []int64{1, 4}},
		{"transaction", Query{Transaction: TransactionRent}, []int64{3, 4}},
		{"development id", Query{DevelopmentID: ptr(int64(10))}, []int64{1, 4}},
		{"development name", Query{DevelopmentName: "Residencial Aurora"}, []int64{1, 4}},
		{"neighborhoods", Query{Neighborhoods: []string{"Campeche", "Centro"}}, []int64{1, 3, 5}},
		{"price min inclusive", Query{PriceMin: ptr(420000.0)}, []int64{1, 2}},
		{"price max inclusive", Query{PriceMax: ptr(7800.0)}, []int64{3, 4}},
		{"price range", Query{PriceMin: ptr(5000.0), PriceMax: ptr(500000.0)}, []int64{1, 4, 5}},
		{"min bedrooms", Query{MinBedrooms: ptr(3)}, []int64{2, 4}},
		{"zero bedrooms is any", Query{MinBedrooms: ptr(0)}, []int64{1, 2, 3, 4, 5}},
		{"min bathrooms", Query{MinBathrooms: ptr(3)}, []int64{2, 4}},
		{"min parking", Query{MinParking: ptr(2)}, []int64{2, 4}},
		{"area min inclusive", Query{AreaMin: ptr(160.0)}, []int64{2, 4, 5}},
		{"text in title", Query{Text: "piscina"}, []int64{2}},
		{"text case-insensitive in description", Query{Text: "vista mar"}, []int64{4}},
		{"text in neighborhood", Query{Text: "campeche"}, []int64{1, 5}},
		{"text in city", Query{Text: "são josé"}, []int64{3}},
		{"conjunctive", Query{Type: TypeApartment, Transaction: TransactionSale}, []int64{1}},
		{"no match", Query{Type: TypeHouse, Transaction: TransactionRent}, []int64{}},
		{"sort price asc", Query{Sort: SortPriceAsc}, []int64{3, 4, 5, 1, 2}},
		{"sort price desc", Query{Sort: SortPriceDesc}, []int64{2, 1, 5, 4, 3}},
		{"sort area asc", Query{Sort: SortAreaAsc}, []int64{3, 1, 4, 2, 5}},
		{"sort area desc", Query{Sort: SortAreaDesc}, []int64{5, 2, 4, 1, 3}},
		{"sort recent", Query{Sort: SortRecent}, []int64{5, 4, 3, 2, 1}},
		{"unknown sort keeps order", Query{Sort: "aleatorio"}, []int64{1, 2, 3, 4, 5}},
		{"filter then sort", Query{Type: TypeApartment, Sort: SortPriceDesc}, []int64{1, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(catalog(), tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter() ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterEqualityIsSound(t *testing.T) {
	all := catalog()
	for _, typ := range Types {
		got := Filter(all, Query{Type: typ})
		for _, l := range got {
			if l.Type != typ {
				t.Errorf("type %s: result %d has type %s", typ, l.ID, l.Type)
			}
		}
		want := 0
		for _, l := range all {
			if l.Type == typ {
				want++
			}
		}
		if len(got) != want {
			t.Errorf("type %s: got %d results, want %d", typ, len(got), want)
		}
	}
}

func TestFilterPriceBounds(t *testing.T) {
	bounds := []struct{ min, max *float64 }{
		{ptr(3500.0), nil},
		{nil, ptr(250000.0)},
		{ptr(3500.0), ptr(420000.0)},
		{ptr(1e9), nil},
	}
	for _, b := range bounds {
		for _, l := range Filter(catalog(), Query{PriceMin: b.min, PriceMax: b.max}) {
			if b.min != nil && l.Price < *b.min {
				t.Errorf("listing %d price %v below min %v", l.ID, l.Price, *b.min)
			}
			if b.max != nil && l.Price > *b.max {
				t.Errorf("listing %d price %v above max %v", l.ID, l.Price, *b.max)
			}
		}
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	q := Query{Transaction: TransactionSale, Sort: SortAreaDesc}
	first := Filter(catalog(), q)
	second := Filter(catalog(), q)
	if diff := cmp.Diff(ids(first), ids(second)); diff != "" {
		t.Errorf("repeated Filter() differs (-first +second):\n%s", diff)
	}
	again := Filter(first, q)
	if diff := cmp.Diff(ids(first), ids(again)); diff != "" {
		t.Errorf("Filter() of its own output differs (-first +again):\n%s", diff)
	}
}

func TestFilterAscDescAreReversed(t *testing.T) {
	asc := ids(Filter(catalog(), Query{Sort: SortPriceAsc}))
	desc := ids(Filter(catalog(), Query{Sort: SortPriceDesc}))
	for i, j := 0, len(desc)-1; i < j; i, j = i+1, j-1 {
		desc[i], desc[j] = desc[j], desc[i]
	}
	if diff := cmp.Diff(asc, desc); diff != "" {
		t.Errorf("asc is not the reverse of desc (-asc +reversed desc):\n%s", diff)
	}
}

func TestFilterSortIsStable(t *testing.T) {
	listings := []Listing{
		{ID: 1, Price: 100, Available: true},
		{ID: 2, Price: 50, Available: true},
		{ID: 3, Price: 100, Available: true},
		{ID: 4, Price: 50, Available: true},
	}
	got := ids(Filter(listings, Query{Sort: SortPriceAsc}))
	if diff := cmp.Diff([]int64{2, 4, 1, 3}, got); diff != "" {
		t.Errorf("ties reordered (-want +got):\n%s", diff)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	in := catalog()
	before := ids(in)
	_ = Filter(in, Query{Sort: SortRecent})
	if diff := cmp.Diff(before, ids(in)); diff != "" {
		t.Errorf("input reordered (-before +after):\n%s", diff)
	}
}

func TestAvailable(t *testing.T) {
	listings := []Listing{
		{ID: 1, Price: 200000, Available: true},
		{ID: 2, Price: 350000, Available: true},
		{ID: 3, Price: 100000, Available: false},
	}

	got := ids(Filter(Available(listings), Query{Sort: SortPriceAsc}))
	if diff := cmp.Diff([]int64{1, 2}, got); diff != "" {
		t.Errorf("available search mismatch (-want +got):\n%s", diff)
	}
}
