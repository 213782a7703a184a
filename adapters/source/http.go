package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"phddash/internal/errors"
	"phddash/internal/logging"
)

const userAgent = "phddash/1.0"

var logger = logging.For("HTTPFetcher")

// HTTPFetcher issues a single GET per Fetch. There are no retries.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// NewHTTPFetcherWithClient is used by tests to point at httptest servers
func NewHTTPFetcherWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.FetchError(location, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/tab-separated-values, text/plain, */*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.FetchError(location, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errors.FetchError(location, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	logger.Debugf("GET %s -> %d in %.2fms", location, resp.StatusCode, float64(time.Since(start).Nanoseconds())/1e6)
	return resp.Body, nil
}
