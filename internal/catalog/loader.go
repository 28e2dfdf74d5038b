// Package catalog loads the site's listing and development records from
// their JSON documents and answers lookups, searches and statistics over
// them. A Loader caches what it fetches for a few minutes, so repeated
// reads within that window cost no network round trips.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/borghese/vitrine/internal/cache"
	"github.com/borghese/vitrine/internal/contact"
	"github.com/borghese/vitrine/internal/property"
	"github.com/borghese/vitrine/internal/source"
)

// Data paths, relative to the site root.
const (
	ManifestPath     = "src/data/config/manifest.json"
	FilterConfigPath = "src/data/config/filtros.json"
)

// Cache keys for the aggregate collections.
const (
	keyAllListings     = "todos_imoveis"
	keyAllDevelopments = "todos_empreendimentos"
)

const defaultConcurrency = 16

// FetchError reports a document that could not be loaded from any of its
// candidate locations. Err is the last attempt's error.
type FetchError struct {
	Path string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Loader fetches and caches catalog data. Create one with New and share it;
// it is safe for concurrent use.
type Loader struct {
	src         source.Source
	resolver    source.Resolver
	cache       *cache.Cache
	relay       contact.Relay
	concurrency int

	mu       sync.Mutex
	manifest *property.Manifest

	flight singleflight.Group
	// generation is bumped by ClearCache so loads started before a clear
	// do not repopulate the cache.
	generation atomic.Uint64
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache replaces the default five-minute cache.
func WithCache(c *cache.Cache) Option {
	return func(l *Loader) { l.cache = c }
}

// WithRelay sets where contact submissions are sent.
func WithRelay(r contact.Relay) Option {
	return func(l *Loader) { l.relay = r }
}

// WithConcurrency bounds how many record files an aggregate load fetches
// at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// New creates a Loader reading from src, resolving bare paths with resolver.
func New(src source.Source, resolver source.Resolver, opts ...Option) *Loader {
	l := &Loader{
		src:         src,
		resolver:    resolver,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = cache.New()
	}
	return l
}

// FetchJSON loads the JSON document at path, trying each candidate
// location in order. With useCache, a fresh cached copy of a candidate is
// returned without fetching and a successful fetch is cached under the
// exact candidate that answered.
func (l *Loader) FetchJSON(ctx context.Context, path string, useCache bool) (json.RawMessage, error) {
	var lastErr error

	for _, candidate := range l.resolver.Candidates(path) {
		if useCache {
			if v, ok := l.cache.Get(candidate); ok {
				slog.Debug("catalog cache hit", "path", candidate)
				return v.(json.RawMessage), nil
			}
		}

		body, err := l.src.Fetch(ctx, candidate)
		if err != nil {
			lastErr = err
			slog.Debug("catalog fetch failed", "path", candidate, "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if !json.Valid(body) {
			lastErr = fmt.Errorf("%s is not valid JSON", candidate)
			continue
		}

		doc := json.RawMessage(body)
		if useCache {
			l.cache.Set(candidate, doc)
		}
		slog.Debug("catalog fetched", "path", candidate, "bytes", len(body))
		return doc, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no locations to try")
	}
	slog.Error("catalog load failed", "path", path, "error", lastErr)
	return nil, &FetchError{Path: path, Err: lastErr}
}

// fetchInto loads path and decodes it into v.
func (l *Loader) fetchInto(ctx context.Context, path string, useCache bool, v any) error {
	doc, err := l.FetchJSON(ctx, path, useCache)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return &FetchError{Path: path, Err: fmt.Errorf("decoding: %w", err)}
	}
	return nil
}

// LoadManifest returns the manifest, loading it on first use. Once loaded
// it is kept for the Loader's lifetime; a failed load is retried next call.
func (l *Loader) LoadManifest(ctx context.Context) (property.Manifest, error) {
	l.mu.Lock()
	if l.manifest != nil {
		m := *l.manifest
		l.mu.Unlock()
		return m, nil
	}
	l.mu.Unlock()

	v, err, _ := l.flight.Do("manifest", func() (any, error) {
		var m property.Manifest
		if err := l.fetchInto(ctx, ManifestPath, true, &m); err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.manifest = &m
		l.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return property.Manifest{}, err
	}
	return v.(property.Manifest), nil
}

// ClearCache drops every cached document and aggregate. The manifest memo
// is kept.
func (l *Loader) ClearCache() {
	l.generation.Add(1)
	l.flight.Forget(keyAllListings)
	l.flight.Forget(keyAllDevelopments)
	l.cache.Clear()
	slog.Info("catalog cache cleared")
}

// SubmitContact hands p to the configured relay. Without a relay every
// submission fails.
func (l *Loader) SubmitContact(ctx context.Context, p contact.Payload) contact.Outcome {
	if l.relay == nil {
		slog.Warn("contact relay not configured")
		return contact.Outcome{Success: false, Message: contact.FailureMessage}
	}
	return l.relay.Submit(ctx, p)
}
