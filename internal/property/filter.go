package property

import (
	"sort"
	"strings"
)

// Filter narrows listings by every constraint in q and then orders them by
// q.Sort. It has no side effects: the input slice is never reordered and the
// result is a fresh slice. Filtering preserves input order, so with no sort
// key the result follows the order listings were loaded in.
func Filter(listings []Listing, q Query) []Listing {
	preds := predicates(q)

	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if matchesAll(l, preds) {
			out = append(out, l)
		}
	}

	sortListings(out, q.Sort)
	return out
}

// Available returns only the listings that may appear in search results.
func Available(listings []Listing) []Listing {
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if l.Available {
			out = append(out, l)
		}
	}
	return out
}

type predicate func(Listing) bool

func matchesAll(l Listing, preds []predicate) bool {
	for _, p := range preds {
		if !p(l) {
			return false
		}
	}
	return true
}

// predicates returns one predicate per constrained query field.
func predicates(q Query) []predicate {
	var preds []predicate

	if q.Type != "" {
		preds = append(preds, func(l Listing) bool { return l.Type == q.Type })
	}
	if q.Transaction != "" {
		preds = append(preds, func(l Listing) bool { return l.Transaction == q.Transaction })
	}
	if q.DevelopmentID != nil {
		id := *q.DevelopmentID
		preds = append(preds, func(l Listing) bool {
			return l.DevelopmentID != nil && *l.DevelopmentID == id
		})
	}
	if q.DevelopmentName != "" {
		preds = append(preds, func(l Listing) bool { return l.DevelopmentName == q.DevelopmentName })
	}
	if len(q.Neighborhoods) > 0 {
		set := make(map[string]struct{}, len(q.Neighborhoods))
		for _, n := range q.Neighborhoods {
			set[n] = struct{}{}
		}
		preds = append(preds, func(l Listing) bool {
			_, ok := set[l.Address.Neighborhood]
			return ok
		})
	}
	if q.PriceMin != nil {
		lo := *q.PriceMin
		preds = append(preds, func(l Listing) bool { return l.Price >= lo })
	}
	if q.PriceMax != nil {
		hi := *q.PriceMax
		preds = append(preds, func(l Listing) bool { return l.Price <= hi })
	}
	// Room and parking minimums of zero are "any", as on the site's form.
	if q.MinBedrooms != nil && *q.MinBedrooms > 0 {
		n := *q.MinBedrooms
		preds = append(preds, func(l Listing) bool { return l.Features.Bedrooms >= n })
	}
	if q.MinBathrooms != nil && *q.MinBathrooms > 0 {
		n := *q.MinBathrooms
		preds = append(preds, func(l Listing) bool { return l.Features.Bathrooms >= n })
	}
	if q.MinParking != nil && *q.MinParking > 0 {
		n := *q.MinParking
		preds = append(preds, func(l Listing) bool { return l.Features.Parking >= n })
	}
	if q.AreaMin != nil {
		n := *q.AreaMin
		preds = append(preds, func(l Listing) bool { return l.Features.Area >= n })
	}
	if q.Text != "" {
		term := strings.ToLower(q.Text)
		preds = append(preds, func(l Listing) bool { return matchesText(l, term) })
	}

	return preds
}

// matchesText reports whether term (already lower-cased) appears in the
// title, description, neighborhood or city.
func matchesText(l Listing, term string) bool {
	for _, field := range []string{l.Title, l.Description, l.Address.Neighborhood, l.Address.City} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// sortListings orders listings in place, stably. Unknown keys keep the order.
func sortListings(listings []Listing, key SortKey) {
	var less func(a, b Listing) bool

	switch key {
	case SortPriceAsc:
		less = func(a, b Listing) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b Listing) bool { return a.Price > b.Price }
	case SortAreaAsc:
		less = func(a, b Listing) bool { return a.Features.Area < b.Features.Area }
	case SortAreaDesc:
		less = func(a, b Listing) bool { return a.Features.Area > b.Features.Area }
	case SortRecent:
		less = func(a, b Listing) bool { return a.ID > b.ID }
	default:
		return
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return less(listings[i], listings[j])
	})
}
