package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/borghese/vitrine/internal/property"
)

// BuildManifest lists every record file under the site at root, sorted by
// path, as the manifest would reference them.
func BuildManifest(root string) (property.Manifest, error) {
	listings, err := recordFiles(root, "imoveis")
	if err != nil {
		return property.Manifest{}, err
	}
	devs, err := recordFiles(root, "empreendimentos")
	if err != nil {
		return property.Manifest{}, err
	}
	return property.Manifest{Listings: listings, Developments: devs}, nil
}

// WriteManifest rebuilds the manifest for the site at root and writes it to
// its standard location.
func WriteManifest(root string) (property.Manifest, error) {
	m, err := BuildManifest(root)
	if err != nil {
		return property.Manifest{}, err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return property.Manifest{}, fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(root, filepath.FromSlash(ManifestPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return property.Manifest{}, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return property.Manifest{}, fmt.Errorf("writing manifest: %w", err)
	}
	return m, nil
}

func recordFiles(root, kind string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(root, "src", "data", kind, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, "src/data/"+kind+"/"+filepath.Base(m))
	}
	sort.Strings(paths)
	return paths, nil
}
