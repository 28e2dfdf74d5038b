// Package source resolves data paths and fetches the raw JSON documents
// behind them, either from the published site over HTTP or from a local
// checkout of the site.
package source

import "strings"

// Resolver turns a data path into the ordered list of locations to try.
//
// Paths that are absolute URLs or already anchored ("/", "./", "../") are
// used as-is. Bare paths are relative to the site root, so a page nested
// under /pages/ tries "../p" first and a root page tries "p" first.
type Resolver struct {
	nested bool
}

// NewResolver creates a Resolver for the page the data is requested from.
func NewResolver(pagePath string) Resolver {
	return Resolver{nested: strings.Contains(pagePath, "/pages/")}
}

// Nested reports whether the requesting page lives under /pages/.
func (r Resolver) Nested() bool {
	return r.nested
}

// Candidates returns the de-duplicated locations to try for path, in order.
func (r Resolver) Candidates(path string) []string {
	if isAnchored(path) {
		return []string{path}
	}

	var candidates []string
	if r.nested {
		candidates = []string{"../" + path, path}
	} else {
		candidates = []string{path, "./" + path}
	}
	return dedupe(candidates)
}

func isAnchored(path string) bool {
	return strings.HasPrefix(path, "http") ||
		strings.HasPrefix(path, "/") ||
		strings.HasPrefix(path, "./") ||
		strings.HasPrefix(path, "../")
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
