package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds a single HTTP fetch.
const DefaultTimeout = 30 * time.Second

// Source fetches the raw bytes stored at a resolved location.
type Source interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// HTTPSource fetches documents from the published site. Relative
// locations are resolved against the URL of the requesting page, the
// same way a browser resolves them.
type HTTPSource struct {
	httpClient *http.Client
	base       *url.URL
}

// NewHTTPSource creates a source rooted at pageURL, for example
// "https://www.example.com.br/pages/imoveis.html". A zero timeout
// means DefaultTimeout.
func NewHTTPSource(pageURL string, timeout time.Duration) (*HTTPSource, error) {
	if pageURL == "" {
		return nil, fmt.Errorf("page URL is required")
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("page URL must be http or https, got %q", pageURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{
		httpClient: &http.Client{Timeout: timeout},
		base:       base,
	}, nil
}

// Fetch GETs the document at location.
func (s *HTTPSource) Fetch(ctx context.Context, location string) (body []byte, err error) {
	ref, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parsing location: %w", err)
	}
	target := s.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing body: %w", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// PageURL returns the URL relative locations are resolved against.
func (s *HTTPSource) PageURL() string {
	return s.base.String()
}

// DirSource reads documents from a local copy of the site. Relative
// locations are resolved against the directory of the requesting page,
// and nothing outside root can be read.
type DirSource struct {
	root    string
	pageDir string
}

// NewDirSource creates a source over the site checked out at root, with
// pagePath being the page's path inside the site ("/" or "/pages/x.html").
func NewDirSource(root, pagePath string) (*DirSource, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening site root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site root %s is not a directory", abs)
	}

	pageDir := "/"
	if pagePath != "" {
		pageDir = pathDir(pagePath)
	}
	return &DirSource{root: abs, pageDir: pageDir}, nil
}

// Fetch reads the file at location.
func (s *DirSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.HasPrefix(location, "http") {
		return nil, fmt.Errorf("cannot fetch %s from a directory source", location)
	}

	sitePath := location
	if !strings.HasPrefix(location, "/") {
		sitePath = s.pageDir + location
	}
	// Clean as a rooted path so ".." can never climb above the site root.
	sitePath = filepath.Clean("/" + filepath.FromSlash(sitePath))

	data, err := os.ReadFile(filepath.Join(s.root, sitePath))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return data, nil
}

// Root returns the absolute site directory.
func (s *DirSource) Root() string {
	return s.root
}

// pathDir returns the directory part of a site path, always ending in "/".
func pathDir(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p[:strings.LastIndex(p, "/")+1]
}
