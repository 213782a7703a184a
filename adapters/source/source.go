// Package source opens the raw dataset from the location named by a URL.
package source

import (
	"context"
	"io"
	"net/url"
	"strings"

	"phddash/internal/errors"
)

// Fetcher opens the resource at location. Callers close the reader.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

// Router dispatches to a Fetcher by URL scheme. A scheme without a
// registered fetcher is rejected.
type Router struct {
	fetchers map[string]Fetcher
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{fetchers: make(map[string]Fetcher)}
}

// Register binds fetcher to each scheme. "" covers bare filesystem paths.
func (r *Router) Register(fetcher Fetcher, schemes ...string) *Router {
	for _, scheme := range schemes {
		r.fetchers[strings.ToLower(scheme)] = fetcher
	}
	return r
}

// Fetch implements Fetcher
func (r *Router) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	scheme, err := Scheme(location)
	if err != nil {
		return nil, err
	}
	fetcher, ok := r.fetchers[scheme]
	if !ok {
		return nil, errors.InvalidInput("unsupported source scheme " + scheme + "://")
	}
	return fetcher.Fetch(ctx, location)
}

// Scheme returns the lower-cased URL scheme of location, or "" for a plain
// filesystem path.
func Scheme(location string) (string, error) {
	if location == "" {
		return "", errors.InvalidInput("source location is empty")
	}
	if !strings.Contains(location, "://") {
		return "", nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", errors.Wrap(errors.InvalidInput(err.Error()), "invalid source location")
	}
	return strings.ToLower(u.Scheme), nil
}
