package source

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"phddash/internal/errors"
)

// FileFetcher opens local files named by file:// URLs or bare paths
type FileFetcher struct{}

// Fetch implements Fetcher
func (FileFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.FetchError(location, err)
	}
	path := location
	if strings.HasPrefix(location, "file://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, errors.Wrap(errors.InvalidInput(err.Error()), "invalid file URL")
		}
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.FetchError(location, err)
	}
	return f, nil
}
