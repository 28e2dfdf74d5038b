package contact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the form relay the site posts to.
const DefaultEndpoint = "https://formsubmit.co/contato@borghese.com.br"

// Relay delivers a contact submission.
type Relay interface {
	Submit(ctx context.Context, p Payload) Outcome
}

// HTTPRelay posts submissions to a FormSubmit-style endpoint as a single
// form-encoded request. It never retries.
type HTTPRelay struct {
	httpClient *http.Client
	endpoint   string
}

// NewHTTPRelay creates a relay posting to endpoint, or DefaultEndpoint
// when empty. A zero timeout means 30 seconds.
func NewHTTPRelay(endpoint string, timeout time.Duration) *HTTPRelay {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPRelay{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

// Submit sends p and maps any 2xx response to success. Every other
// status and every transport error is a failure.
func (r *HTTPRelay) Submit(ctx context.Context, p Payload) Outcome {
	if err := r.post(ctx, p); err != nil {
		slog.Warn("contact relay failed", "endpoint", r.endpoint, "error", err)
		return failed()
	}
	slog.Info("contact submitted", "relay", "http", "subject", p.Subject)
	return succeeded()
}

// FormValues maps a payload to the relay's field names.
func FormValues(p Payload) url.Values {
	return url.Values{
		"name":      {p.Name},
		"email":     {p.Email},
		"phone":     {p.Phone},
		"subject":   {p.Subject},
		"message":   {p.Message},
		"_captcha":  {"false"},
		"_template": {"table"},
	}
}

func (r *HTTPRelay) post(ctx context.Context, p Payload) (err error) {
	body := FormValues(p).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing body: %w", closeErr)
		}
	}()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
