package catalog

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/borghese/vitrine/internal/property"
)

// ListingByID finds the listing with the given id. found is false when the
// catalog loaded but has no such listing.
func (l *Loader) ListingByID(ctx context.Context, id int64) (listing property.Listing, found bool, err error) {
	listings, err := l.LoadAllListings(ctx)
	if err != nil {
		return property.Listing{}, false, err
	}
	for _, li := range listings {
		if li.ID == id {
			return li, true, nil
		}
	}
	return property.Listing{}, false, nil
}

// DevelopmentByKey finds a development by numeric id or by slug.
func (l *Loader) DevelopmentByKey(ctx context.Context, key string) (dev property.Development, found bool, err error) {
	devs, err := l.LoadAllDevelopments(ctx)
	if err != nil {
		return property.Development{}, false, err
	}

	id, idErr := strconv.ParseInt(key, 10, 64)
	for _, d := range devs {
		if (idErr == nil && d.ID == id) || (d.Slug != "" && d.Slug == key) {
			return d, true, nil
		}
	}
	return property.Development{}, false, nil
}

// Search returns the available listings matching q, ordered by q.Sort.
func (l *Loader) Search(ctx context.Context, q property.Query) ([]property.Listing, error) {
	listings, err := l.LoadAllListings(ctx)
	if err != nil {
		return nil, err
	}
	return property.Filter(property.Available(listings), q), nil
}

// Statistics summarizes the whole listing catalog.
func (l *Loader) Statistics(ctx context.Context) (property.Stats, error) {
	listings, err := l.LoadAllListings(ctx)
	if err != nil {
		return property.Stats{}, err
	}
	return property.ComputeStats(listings), nil
}

// FeaturedListings returns listings that are both featured and available.
func (l *Loader) FeaturedListings(ctx context.Context) ([]property.Listing, error) {
	listings, err := l.LoadAllListings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]property.Listing, 0)
	for _, li := range listings {
		if li.Featured && li.Available {
			out = append(out, li)
		}
	}
	return out, nil
}

// FeaturedDevelopments returns developments that are both featured and
// available.
func (l *Loader) FeaturedDevelopments(ctx context.Context) ([]property.Development, error) {
	devs, err := l.LoadAllDevelopments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]property.Development, 0)
	for _, d := range devs {
		if d.Featured && d.Available {
			out = append(out, d)
		}
	}
	return out, nil
}

// DevelopmentUnits returns the available listings that belong to the
// development with the given id.
func (l *Loader) DevelopmentUnits(ctx context.Context, devID int64) ([]property.Listing, error) {
	return l.Search(ctx, property.Query{DevelopmentID: &devID})
}

// LoadFilterConfig returns the site's filter form configuration. A
// document holding null yields an empty object.
func (l *Loader) LoadFilterConfig(ctx context.Context) (map[string]any, error) {
	doc, err := l.FetchJSON(ctx, FilterConfigPath, true)
	if err != nil {
		return nil, err
	}
	var cfg map[string]any
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, &FetchError{Path: FilterConfigPath, Err: err}
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return cfg, nil
}
