package catalog

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/borghese/vitrine/internal/property"
)

// record is a decoded catalog record that can check its own invariants.
type record[T any] interface {
	*T
	Validate() error
	Clone() T
}

// LoadAllListings returns every listing named in the manifest, in manifest
// order. Files are fetched concurrently and uncached; the combined result
// is cached as a whole. If any file cannot be fetched or decoded, the whole
// load fails and nothing is cached. Records that fail validation are logged
// and left out. The returned records are the caller's to modify.
func (l *Loader) LoadAllListings(ctx context.Context) ([]property.Listing, error) {
	return loadAggregate[property.Listing](ctx, l, keyAllListings, func(m property.Manifest) []string {
		return m.Listings
	})
}

// LoadAllDevelopments is LoadAllListings for developments.
func (l *Loader) LoadAllDevelopments(ctx context.Context) ([]property.Development, error) {
	return loadAggregate[property.Development](ctx, l, keyAllDevelopments, func(m property.Manifest) []string {
		return m.Developments
	})
}

func loadAggregate[T any, PT record[T]](ctx context.Context, l *Loader, key string, paths func(property.Manifest) []string) ([]T, error) {
	if v, ok := l.cache.Get(key); ok {
		return cloneAll[T, PT](v.([]T)), nil
	}

	// Concurrent callers share one load.
	v, err, _ := l.flight.Do(key, func() (any, error) {
		gen := l.generation.Load()

		m, err := l.LoadManifest(ctx)
		if err != nil {
			return nil, err
		}

		records, err := loadAll[T, PT](ctx, l, paths(m))
		if err != nil {
			return nil, err
		}

		// A clear during the load means records may predate it.
		if l.generation.Load() == gen {
			l.cache.Set(key, records)
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneAll[T, PT](v.([]T)), nil
}

func cloneAll[T any, PT record[T]](records []T) []T {
	out := make([]T, len(records))
	for i := range records {
		out[i] = PT(&records[i]).Clone()
	}
	return out
}

// loadAll fetches and validates every path, keeping input order and
// dropping records that fail validation.
func loadAll[T any, PT record[T]](ctx context.Context, l *Loader, paths []string) ([]T, error) {
	out := make([]T, len(paths))
	valid := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			var rec T
			if err := l.fetchInto(gctx, path, false, &rec); err != nil {
				return err
			}
			if err := PT(&rec).Validate(); err != nil {
				var verr *property.ValidationError
				if !errors.As(err, &verr) {
					return &FetchError{Path: path, Err: err}
				}
				slog.Warn("skipping invalid record", "path", path, "error", err)
				return nil
			}
			out[i] = rec
			valid[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := out[:0]
	for i, rec := range out {
		if valid[i] {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}
