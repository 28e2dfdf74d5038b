// Package client provides an HTTP client for the vitrine JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/borghese/vitrine/internal/contact"
	"github.com/borghese/vitrine/internal/property"
)

// Client is an HTTP client for the vitrine API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StatusError is an error response from the API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error: %s", http.StatusText(e.Code))
}

// SavedSearch is the response from GET /api/filters.
type SavedSearch struct {
	Saved bool           `json:"salvo"`
	Query property.Query `json:"filtros"`
	Tags  []property.Tag `json:"tags"`
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", resp.Status)
	}
	return nil
}

// Search runs a search. With save the server remembers the query.
func (c *Client) Search(ctx context.Context, q property.Query, save bool) ([]property.Listing, error) {
	v := q.Values()
	if save {
		v.Set("salvar", "1")
	}
	path := "/api/listings"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var listings []property.Listing
	if err := c.get(ctx, path, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Listing returns one listing. found is false when the server has none
// with that ID.
func (c *Client) Listing(ctx context.Context, id int64) (l property.Listing, found bool, err error) {
	err = c.get(ctx, "/api/listings/"+strconv.FormatInt(id, 10), &l)
	if isNotFound(err) {
		return property.Listing{}, false, nil
	}
	if err != nil {
		return property.Listing{}, false, err
	}
	return l, true, nil
}

// Development returns a development by ID or slug.
func (c *Client) Development(ctx context.Context, key string) (d property.Development, found bool, err error) {
	err = c.get(ctx, "/api/developments/"+url.PathEscape(key), &d)
	if isNotFound(err) {
		return property.Development{}, false, nil
	}
	if err != nil {
		return property.Development{}, false, err
	}
	return d, true, nil
}

// Stats returns catalog statistics.
func (c *Client) Stats(ctx context.Context) (property.Stats, error) {
	var s property.Stats
	if err := c.get(ctx, "/api/stats", &s); err != nil {
		return property.Stats{}, err
	}
	return s, nil
}

// SavedSearch returns the server's saved search.
func (c *Client) SavedSearch(ctx context.Context) (SavedSearch, error) {
	var s SavedSearch
	if err := c.get(ctx, "/api/filters", &s); err != nil {
		return SavedSearch{}, err
	}
	return s, nil
}

// Contact submits a contact form. A relay failure is reported in the
// outcome, not as an error; err is for invalid forms and transport errors.
func (c *Client) Contact(ctx context.Context, p contact.Payload) (contact.Outcome, error) {
	var out contact.Outcome
	err := c.post(ctx, "/api/contact", p, &out)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusBadGateway {
		return out, nil
	}
	if err != nil {
		return contact.Outcome{}, err
	}
	return out, nil
}

// ClearCache drops the server's cached documents.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.post(ctx, "/api/cache/clear", nil, nil)
}

func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// post performs a POST request with an optional JSON body and decodes the
// response.
func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// do executes an HTTP request and handles errors. An error status still
// decodes a JSON body into result, so callers can read the outcome of a
// failed contact relay.
func (c *Client) do(req *http.Request, result interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		se := &StatusError{Code: resp.StatusCode}
		if json.Unmarshal(respBody, &errResp) == nil {
			se.Message = errResp.Error
		}
		if result != nil && len(respBody) > 0 {
			_ = json.Unmarshal(respBody, result)
		}
		return se
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
