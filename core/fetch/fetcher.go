// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests for remote post pages and sitemaps.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/hexovault/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "hexovault/1.0 (https://github.com/gaurav-prasanna/hexovault)"
)

// DefaultMaxBodySize caps a response body; post pages are far smaller.
const DefaultMaxBodySize = 32 << 20

// ErrBodyTooLarge is returned for responses over the body size limit.
var ErrBodyTooLarge = errors.New("response body too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client *http.Client
	// MaxBodySize is the largest body Fetch accepts.
	MaxBodySize int64
}

var _ core.Fetcher = (*HTTPFetcher)(nil)

// New creates an HTTPFetcher with a sensible timeout.
func New() *HTTPFetcher {
	return NewWithClient(&http.Client{Timeout: defaultTimeout})
}

// NewWithClient creates an HTTPFetcher using client.
func NewWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client, MaxBodySize: DefaultMaxBodySize}
}

// Fetch retrieves the raw body of the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	limit := f.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	// One byte past the limit tells a full body from a cut-off one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("fetching %s: %w (limit %d bytes)", url, ErrBodyTooLarge, limit)
	}
	return body, nil
}
